package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("<p>a</p>\n<p>b</p>\n\n\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	if err != nil {
		t.Fatal(err)
	}
	want := "<p>a</p>\n<p>b</p>"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGetMultiline_EOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\r\nb"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	assert.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestGetConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		got := GetConfirm(bufio.NewReader(strings.NewReader(tc.input)), "Continue?", &out)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Equal(t, "Continue? [y/N]\n> ", out.String())
	}
}
