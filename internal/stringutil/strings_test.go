package stringutil

import (
	"slices"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Đăng ký hộ kinh doanh", "dang ky ho kinh doanh"},
		{"ĐĂNG KÝ  KHAI   SINH", "dang ky khai sinh"},
		{"  Cấp lại CCCD ", "cap lai cccd"},
		{"Ủy ban nhân dân", "uy ban nhan dan"},
		{"plain ascii", "plain ascii"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFold_Decomposed(t *testing.T) {
	// "hộ" written with combining marks folds the same as the precomposed form.
	decomposed := "ho\u0323\u0302"
	if Fold(decomposed) != Fold("hộ") {
		t.Errorf("Fold(decomposed) = %q, Fold(precomposed) = %q", Fold(decomposed), Fold("hộ"))
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		haystack, needle string
		want             bool
	}{
		{"Đăng ký hộ kinh doanh", "ho kinh doanh", true},
		{"Đăng ký hộ kinh doanh", "HỘ KINH DOANH", true},
		{"làm cccd mới", "cccd", true},
		{"Đăng ký khai sinh", "kết hôn", false},
		{"anything", "", false},
		{"anything", "   ", false},
	}
	for _, tt := range tests {
		if got := ContainsFold(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("ContainsFold(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" ; ;", nil},
		{"nộp hồ sơ;trực tuyến", []string{"nộp hồ sơ", "trực tuyến"}},
		{" cccd ;; căn cước ", []string{"cccd", "căn cước"}},
	}
	for _, tt := range tests {
		if got := SplitKeywords(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("SplitKeywords(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("xin chào", 3); got != "xin…" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("hộ", 5); got != "hộ" {
		t.Errorf("Truncate() short = %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Errorf("Truncate() zero limit = %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \t\n") || IsBlank(" a ") {
		t.Error("IsBlank misclassified input")
	}
}
