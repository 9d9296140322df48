package agent

import (
	"errors"
	"testing"
)

func TestExtractArray(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare array",
			text: `[1, 2, 3]`,
			want: `[1, 2, 3]`,
		},
		{
			name: "array inside prose",
			text: `Here are the stories you asked for: [{"id": 1}] — enjoy!`,
			want: `[{"id": 1}]`,
		},
		{
			name: "nested arrays",
			text: `prefix [[1, [2]], 3] suffix [4]`,
			want: `[[1, [2]], 3]`,
		},
		{
			name: "brackets inside string literals",
			text: `[{"title": "Vec<[u8]> in Rust ]"}]`,
			want: `[{"title": "Vec<[u8]> in Rust ]"}]`,
		},
		{
			name: "escaped quote inside string",
			text: `[{"title": "say \"]\" loudly"}]`,
			want: `[{"title": "say \"]\" loudly"}]`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractArray(tc.text)
			if err != nil {
				t.Fatalf("ExtractArray failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractArray_NoArray(t *testing.T) {
	for _, text := range []string{"", "no json here", `{"only": "object"}`} {
		if _, err := ExtractArray(text); !errors.Is(err, ErrNoJSON) {
			t.Errorf("ExtractArray(%q) = %v, want ErrNoJSON", text, err)
		}
	}
}

func TestExtractArray_Unbalanced(t *testing.T) {
	if _, err := ExtractArray(`[1, 2`); !errors.Is(err, ErrNoJSON) {
		t.Errorf("unbalanced array should wrap ErrNoJSON, got %v", err)
	}
}

func TestExtractObject(t *testing.T) {
	text := "Sure! Here is your newsletter:\n```json\n{\"subject\": \"Hi\", \"content\": \"<p>{nested} text</p>\"}\n```"
	got, err := ExtractObject(text)
	if err != nil {
		t.Fatalf("ExtractObject failed: %v", err)
	}
	want := `{"subject": "Hi", "content": "<p>{nested} text</p>"}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractObject_NestedBraces(t *testing.T) {
	got, err := ExtractObject(`x {"a": {"b": 1}} y`)
	if err != nil {
		t.Fatalf("ExtractObject failed: %v", err)
	}
	if got != `{"a": {"b": 1}}` {
		t.Errorf("got %q", got)
	}
}
