package reasoner

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json",
			in:   `[{"index": 0}]`,
			want: `[{"index": 0}]`,
		},
		{
			name: "json fence",
			in:   "Here you go:\n```json\n[{\"index\": 0}]\n```\nHope that helps!",
			want: `[{"index": 0}]`,
		},
		{
			name: "anonymous fence",
			in:   "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "unterminated fence",
			in:   "```json\n[1]",
			want: `[1]`,
		},
		{
			name: "surrounding whitespace",
			in:   "  \n {\"a\": 1} \n",
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
