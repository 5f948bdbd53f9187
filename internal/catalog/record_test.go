package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xuanlung-gov/tthc-assistant/internal/feed"
)

func TestDecodeProcedures(t *testing.T) {
	rows := []feed.Row{
		{
			ColProcedureName: "Đăng ký khai sinh", ColProcedureCode: "1.001193",
			ColSearchKeywords: "khai sinh", ColAgency1: "xã", ColAgency2: "",
			ColDocument1: "Tờ khai", ColDocument2: "Giấy chứng sinh",
			ColStep1: "Nộp hồ sơ", ColStep2: "Nhận kết quả",
			ColFee: "Miễn phí", ColProcessingTime: "Trong ngày",
			ColDetailLink: "https://dichvucong.gov.vn/1", ColFormLink1: "https://f/1",
			ColOnlineLink: "https://dichvucong.gov.vn/online", ColNote: "Mang bản chính",
		},
		{ColProcedureName: "", ColProcedureCode: "orphan"},
	}

	got := DecodeProcedures(rows)
	want := []Procedure{{
		Name: "Đăng ký khai sinh", Code: "1.001193", Keywords: "khai sinh", Agency1: "xã",
		Documents:      [3]string{"Tờ khai", "Giấy chứng sinh", ""},
		Steps:          [3]string{"Nộp hồ sơ", "Nhận kết quả", ""},
		Fee:            "Miễn phí",
		ProcessingTime: "Trong ngày",
		DetailLink:     "https://dichvucong.gov.vn/1",
		FormLinks:      [2]string{"https://f/1", ""},
		OnlineLink:     "https://dichvucong.gov.vn/online",
		Note:           "Mang bản chính",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeProcedures() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDocuments(t *testing.T) {
	rows := []feed.Row{
		{ColTitle: "Quy chế làm việc", ColCategory: "Quy chế", ColKeywords: "quy chế",
			ColMainContent: "<p>Điều 1.<br>Phạm vi</p><ul><li>Mục a</li></ul>", ColSourceLink: "https://src"},
		{ColTitle: "", ColCategory: "", ColNote: ""},
		{ColTitle: "", ColKeywords: "chỉ từ khóa"},
	}

	got := DecodeDocuments(rows)
	want := []Document{
		{Title: "Quy chế làm việc", Category: "Quy chế", Keywords: "quy chế",
			MainContent: "Điều 1.\nPhạm vi\n- Mục a", SourceLink: "https://src"},
		{Keywords: "chỉ từ khóa"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeDocuments() mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text, a < b", "plain text, a < b"},
		{"Dòng 1\nDòng 2", "Dòng 1\nDòng 2"},
		{"<b>Đậm</b> &amp; thường", "Đậm & thường"},
		{"<div>A</div><div>B</div>", "A\nB"},
		{"<p>x</p><script>alert(1)</script>", "x"},
	}
	for _, tt := range tests {
		if got := HTMLToText(tt.in); got != tt.want {
			t.Errorf("HTMLToText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeywordList(t *testing.T) {
	p := Procedure{Keywords: "a; ;b"}
	if diff := cmp.Diff([]string{"a", "b"}, p.KeywordList()); diff != "" {
		t.Errorf("KeywordList() mismatch:\n%s", diff)
	}
}
