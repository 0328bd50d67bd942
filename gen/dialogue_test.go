package gen

import (
	"testing"
)

func TestParseDialogue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantLen  int
		wantErr  bool
		speakers []string
	}{
		{
			name:     "plain json",
			raw:      `[{"speaker":"Mentor","text":"Hello."},{"speaker":"Friend","text":"Hi there."}]`,
			wantLen:  2,
			speakers: []string{"Mentor", "Friend"},
		},
		{
			name: "fenced json",
			raw: "```json\n" +
				`[{"speaker":"A","text":"one"},{"speaker":"B","text":"two"}]` +
				"\n```",
			wantLen:  2,
			speakers: []string{"A", "B"},
		},
		{
			name:     "empty text lines dropped",
			raw:      `[{"speaker":"A","text":"keep"},{"speaker":"B","text":"  "}]`,
			wantLen:  1,
			speakers: []string{"A"},
		},
		{
			name:     "blank speaker gets a label",
			raw:      `[{"speaker":"","text":"orphan line"}]`,
			wantLen:  1,
			speakers: []string{"Narrator"},
		},
		{
			name:    "prose instead of json",
			raw:     "Sure! Here's a dialogue about Go:",
			wantErr: true,
		},
		{
			name:    "empty array",
			raw:     `[]`,
			wantErr: true,
		},
		{
			name:    "all lines empty",
			raw:     `[{"speaker":"A","text":""}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := ParseDialogue(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDialogue failed: %v", err)
			}
			if len(lines) != tt.wantLen {
				t.Fatalf("got %d lines, want %d", len(lines), tt.wantLen)
			}
			for i, want := range tt.speakers {
				if lines[i].Speaker != want {
					t.Errorf("line %d speaker = %q, want %q", i, lines[i].Speaker, want)
				}
				if lines[i].ID == "" {
					t.Errorf("line %d has no id", i)
				}
			}
		})
	}
}
