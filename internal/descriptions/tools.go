package descriptions

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	NoticeExtractFileDescription = `Extract the recipient of one postal notice PDF.

**When to use:** You have a single notice (e.g. a two-wheeler registration reminder) and need its recipient fields.

**What you get:** name (이름), zip code (우편번호), address (주소), title (제목), vehicle number (차량번호) and due date (비고), plus the list of fields that could not be found.

**Examples:**
• "Extract the recipient from notices/2024-03/hong.pdf"
• "Which fields are missing in kim.pdf?"

**Best practices:** A missing field means the notice text did not match the expected form. Scanned notices have no text layer and fail with a no-text error.`

	NoticeExtractDirectoryDescription = `Extract every notice PDF in a directory, in file name order.

**When to use:** Preparing a batch mailing from a folder of notices.

**Behavior:** Files are processed one at a time. A file that cannot be read is listed under failures and skipped; the rest are still extracted.

**Examples:**
• "Extract all notices in the configured directory"
• "Extract notices whose file name contains 2024-03"

**Common workflow:** notice_search_directory → notice_extract_directory → review missing fields → notice_export`

	NoticeExportDescription = `Write the Postmoa (우편모아) upload workbooks and the windowed-envelope PDF.

**When to use:** The records are ready and the mailing should be submitted.

**Input:** Either a directory of notice PDFs (extracted on the fly) or a saved worksheet (.xlsx). With neither, the configured input directory is used.

**Output:** Four files sharing one timestamp prefix:
• <timestamp>_일반우편.xlsx (normal mail)
• <timestamp>_등기우편.xlsx (registered mail)
• <timestamp>_선택등기우편.xlsx (selective registered mail)
• <timestamp>_창봉투_주소.pdf (two A4 pages per recipient for windowed envelopes)

**Best practices:** Check the incomplete rows reported in the result. Empty fields are exported as empty cells.`

	NoticeSearchDirectoryDescription = `List notice PDFs in a directory, optionally filtered by file name.

**When to use:** Before extracting, to see which notices are available.

**Examples:**
• "List all notices"
• "Find notices for kim"

**Best practices:** Matching is case-insensitive on the file name; several words must all appear.`

	NoticeServerInfoDescription = `Show the server configuration, the available tools, the configured directories and the output layouts.

**When to use:** At the start of a session, to learn where notices are read from and where exports are written.`
)
