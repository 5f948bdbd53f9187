package mode

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{
			name: "procedure tag",
			raw:  "[CHẾ ĐỘ: THỦ TỤC] đăng ký khai sinh",
			want: Query{Label: "THỦ TỤC", Question: "đăng ký khai sinh"},
		},
		{
			name: "no tag",
			raw:  "  quy chế làm việc là gì? ",
			want: Query{Label: Default, Question: "quy chế làm việc là gì?"},
		},
		{
			name: "keyword case-insensitive, label upper-cased",
			raw:  "[chế độ:biểu mẫu]mẫu tờ khai",
			want: Query{Label: "BIỂU MẪU", Question: "mẫu tờ khai"},
		},
		{
			name: "english keyword",
			raw:  "[Mode: contact] số điện thoại một cửa",
			want: Query{Label: "CONTACT", Question: "số điện thoại một cửa"},
		},
		{
			name: "label whitespace trimmed",
			raw:  "[CHẾ ĐỘ:   tài liệu   ]   nội quy",
			want: Query{Label: "TÀI LIỆU", Question: "nội quy"},
		},
		{
			name: "tag not at start is part of the question",
			raw:  "hỏi [CHẾ ĐỘ: THỦ TỤC] khai sinh",
			want: Query{Label: Default, Question: "hỏi [CHẾ ĐỘ: THỦ TỤC] khai sinh"},
		},
		{
			name: "leading space before tag is not a tag",
			raw:  " [CHẾ ĐỘ: THỦ TỤC] khai sinh",
			want: Query{Label: Default, Question: "[CHẾ ĐỘ: THỦ TỤC] khai sinh"},
		},
		{
			name: "empty label",
			raw:  "[CHẾ ĐỘ: ] câu hỏi",
			want: Query{Label: Default, Question: "câu hỏi"},
		},
		{
			name: "tag only",
			raw:  "[CHẾ ĐỘ: THỦ TỤC]",
			want: Query{Label: "THỦ TỤC", Question: ""},
		},
		{
			name: "unterminated tag",
			raw:  "[CHẾ ĐỘ: THỦ TỤC khai sinh",
			want: Query{Label: Default, Question: "[CHẾ ĐỘ: THỦ TỤC khai sinh"},
		},
		{
			name: "decomposed diacritics",
			raw:  "[CHE\u0302\u0301 ĐO\u0323\u0302: THU\u0309 TU\u0323C] khai sinh",
			want: Query{Label: "THỦ TỤC", Question: "khai sinh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.raw); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		label string
		want  Route
	}{
		{"THỦ TỤC", RouteProcedure},
		{"TRA CỨU THỦ TỤC HÀNH CHÍNH", RouteProcedure},
		{"BIỂU MẪU", RouteProcedure},
		{"LIÊN HỆ CÁN BỘ", RouteProcedure},
		{"thủ tục", RouteProcedure},
		{"FORM", RouteProcedure},
		{Default, RouteDocument},
		{"TÀI LIỆU", RouteDocument},
		{"", RouteDocument},
	}
	for _, tt := range tests {
		if got := RouteFor(tt.label); got != tt.want {
			t.Errorf("RouteFor(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}

	if got := Parse("[CHẾ ĐỘ: THỦ TỤC] x").Route(); got != RouteProcedure {
		t.Errorf("Query.Route() = %q", got)
	}
}
