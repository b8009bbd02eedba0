package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/notice-postmoa/internal/records"
)

var hong = records.Record{
	Name:          "홍길동",
	ZipCode:       "16489",
	Address:       "경기도 수원시 팔달구 효원로 1",
	Title:         "이륜자동차 사용신고 미이행 안내",
	VehicleNumber: "경기수원가1234",
	DueDate:       "2024.3.15.",
}

func TestMapping_Render(t *testing.T) {
	tests := []struct {
		name    string
		mapping Mapping
		record  records.Record
		want    string
	}{
		{
			name:    "single placeholder",
			mapping: Mapping{Target: "수취인*", Template: "{이름}"},
			record:  hong,
			want:    "홍길동",
		},
		{
			name:    "combined placeholders",
			mapping: Mapping{Target: "비고", Template: "{차량번호}, {비고}까지"},
			record:  hong,
			want:    "경기수원가1234, 2024.3.15.까지",
		},
		{
			name:    "empty value drops its placeholder",
			mapping: Mapping{Target: "비고", Template: "{차량번호}, {비고}까지"},
			record:  records.Record{DueDate: "2024.3.15."},
			want:    ", 2024.3.15.까지",
		},
		{
			name:    "constant template",
			mapping: Mapping{Target: "통수*", Template: "1"},
			record:  records.Record{},
			want:    "1",
		},
		{
			name:    "extra pattern applied to templated value",
			mapping: Mapping{Target: "휴대폰", Template: "{우편번호}", ExtraPattern: "-", ExtraValue: ""},
			record:  records.Record{ZipCode: "164-89"},
			want:    "16489",
		},
		{
			name:    "extra pattern ignored for constants",
			mapping: Mapping{Target: "휴대폰", Template: "010-1234", ExtraPattern: "-"},
			record:  hong,
			want:    "010-1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.mapping.Render(tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapping_RenderUnknownPlaceholder(t *testing.T) {
	m := Mapping{Target: "비고", Template: "{전화번호}"}
	_, err := m.Render(hong)
	assert.ErrorIs(t, err, ErrUnknownPlaceholder)
}

func TestDefault(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	var names []string
	for _, l := range set.OfKind(KindSpreadsheet) {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"normal", "registered", "selective-registered"}, names)

	envelopes := set.OfKind(KindEnvelope)
	require.Len(t, envelopes, 1)
	env := envelopes[0]
	require.NotNil(t, env.Envelope)
	assert.Equal(t, "창봉투_주소", env.Suffix)
	assert.Equal(t, 35, env.Envelope.Address.Width)
	assert.True(t, env.Envelope.Name.Bold)
	assert.Equal(t, []float64{204, 110, 17}, env.Envelope.Perforations)

	_, ok := set.Get("registered")
	assert.True(t, ok)
	_, ok = set.Get("parcel")
	assert.False(t, ok)
}

func TestLayout_ApplyNormal(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)
	normal, ok := set.Get("normal")
	require.True(t, ok)

	sheet, err := normal.Apply([]records.Record{hong, {Name: "김철수"}})
	require.NoError(t, err)

	wantColumns := []string{"규격*", "중량*", "통수*", "수취인*", "우편번호*", "기본주소*", "상세주소", "휴대폰", "문서번호", "문서제목", "비고"}
	wantRows := [][]string{
		{"규격", "25", "1", "홍길동", "16489", "경기도 수원시 팔달구 효원로 1", "", "", "", "이륜자동차 사용신고 미이행 안내", "경기수원가1234, 2024.3.15.까지"},
		{"규격", "25", "1", "김철수", "", "", "", "", "", "", ", 까지"},
	}

	if diff := cmp.Diff(wantColumns, sheet.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRows, sheet.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "홍길동", sheet.Value(0, "수취인*"))
	assert.Empty(t, sheet.Value(5, "수취인*"))
	assert.Empty(t, sheet.Value(0, "없는열"))
}

func TestLayout_ApplyRegisteredConstants(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	registered, _ := set.Get("registered")
	sheet, err := registered.Apply([]records.Record{hong})
	require.NoError(t, err)
	assert.Equal(t, "보통", sheet.Value(0, "수수료*"))
	assert.Equal(t, "환부불능", sheet.Value(0, "환부*"))
	assert.Equal(t, "25", sheet.Value(0, "중량"))

	selective, _ := set.Get("selective-registered")
	sheet, err = selective.Apply([]records.Record{hong})
	require.NoError(t, err)
	assert.Equal(t, "보통", sheet.Value(0, "수수료*"))
	assert.NotContains(t, sheet.Columns, "환부*")
}

func TestLayout_ApplyNoRows(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)
	normal, _ := set.Get("normal")

	sheet, err := normal.Apply(nil)
	require.NoError(t, err)
	assert.Len(t, sheet.Columns, 11)
	assert.Empty(t, sheet.Rows)
}

func TestLayout_Validate(t *testing.T) {
	base := func() Layout {
		return Layout{
			Name:     "test",
			Kind:     KindSpreadsheet,
			Suffix:   "테스트",
			Columns:  []string{"수취인*", "비고"},
			Mappings: []Mapping{{Target: "수취인*", Template: "{이름}"}},
		}
	}

	tests := []struct {
		name    string
		modify  func(l *Layout)
		wantErr error
	}{
		{name: "valid", modify: func(l *Layout) {}},
		{name: "missing name", modify: func(l *Layout) { l.Name = "" }, wantErr: ErrInvalidLayout},
		{name: "unknown kind", modify: func(l *Layout) { l.Kind = "fax" }, wantErr: ErrInvalidLayout},
		{name: "envelope without geometry", modify: func(l *Layout) { l.Kind = KindEnvelope }, wantErr: ErrInvalidLayout},
		{name: "missing suffix", modify: func(l *Layout) { l.Suffix = "" }, wantErr: ErrInvalidLayout},
		{name: "no columns", modify: func(l *Layout) { l.Columns = nil }, wantErr: ErrInvalidLayout},
		{name: "duplicate column", modify: func(l *Layout) { l.Columns = append(l.Columns, "비고") }, wantErr: ErrInvalidLayout},
		{
			name:    "unknown target",
			modify:  func(l *Layout) { l.Mappings = append(l.Mappings, Mapping{Target: "전화", Template: "1"}) },
			wantErr: ErrUnknownTarget,
		},
		{
			name:    "unknown placeholder",
			modify:  func(l *Layout) { l.Mappings = append(l.Mappings, Mapping{Target: "비고", Template: "{전화}"}) },
			wantErr: ErrUnknownPlaceholder,
		},
		{
			name: "bad extra pattern",
			modify: func(l *Layout) {
				l.Mappings = append(l.Mappings, Mapping{Target: "비고", Template: "{비고}", ExtraPattern: "("})
			},
			wantErr: ErrInvalidLayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base()
			tt.modify(&l)
			err := l.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse(t *testing.T) {
	custom := `
layouts:
  - name: phone
    kind: spreadsheet
    suffix: 전화
    columns: [수취인*, 휴대폰]
    mappings:
      - { target: 수취인*, template: "{이름}" }
      - { target: 휴대폰, template: "{우편번호}", extra_pattern: "-", extra_value: "" }
`
	set, err := Parse([]byte(custom))
	require.NoError(t, err)
	require.Len(t, set.Layouts, 1)

	sheet, err := set.Layouts[0].Apply([]records.Record{{Name: "홍길동", ZipCode: "010-1234-5678"}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"홍길동", "01012345678"}}, sheet.Rows)

	errorCases := []struct {
		name string
		data string
	}{
		{name: "empty", data: "  \n"},
		{name: "no layouts", data: "layouts: []"},
		{name: "not yaml", data: "layouts: [unterminated"},
		{
			name: "duplicate names",
			data: `
layouts:
  - { name: a, kind: spreadsheet, suffix: x, columns: [비고] }
  - { name: a, kind: spreadsheet, suffix: y, columns: [비고] }
`,
		},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.Len(t, set.Layouts, 4)

	path := filepath.Join(t.TempDir(), "layouts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layouts:\n  - { name: only, kind: spreadsheet, suffix: s, columns: [비고] }\n"), 0o644))
	set, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, set.Layouts, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
