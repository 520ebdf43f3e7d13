package bot

import "testing"

func testCommandSet(t *testing.T) *CommandSet {
	t.Helper()
	cs, err := LoadCommandSet(embeddedCommands)
	if err != nil {
		t.Fatalf("LoadCommandSet error: %v", err)
	}
	return cs
}

func TestParseNonCommands(t *testing.T) {
	cs := testCommandSet(t)
	for _, text := range []string{
		"regular message text",
		"",
		"join",                // missing trigger
		" !join",              // trigger not at start
		"!unknowncommandhere", // trigger but no match
		"!",                   // bare trigger
	} {
		if cmd, ok := cs.Parse(text); ok {
			t.Errorf("Parse(%q) = %+v, want no match", text, cmd)
		}
	}
}

func TestParseBuiltins(t *testing.T) {
	cs := testCommandSet(t)
	tests := []struct {
		text string
		want Kind
	}{
		{"!join", KindJoin},
		{"!join extra tokens ignored", KindJoin},
		{"!leave", KindLeave},
		{"!next", KindNext},
		{"!queue", KindListQueue},
		{"!nothing", KindNoOp},
		{"!code x+y", KindRelaySnippet},
	}
	for _, tt := range tests {
		cmd, ok := cs.Parse(tt.text)
		if !ok {
			t.Errorf("Parse(%q) = no match, want %v", tt.text, tt.want)
			continue
		}
		if cmd.Kind != tt.want {
			t.Errorf("Parse(%q).Kind = %v, want %v", tt.text, cmd.Kind, tt.want)
		}
	}
}

func TestParseSnippetPayload(t *testing.T) {
	cs := testCommandSet(t)
	tests := []struct {
		text string
		want string
	}{
		{"!code x+y", "x+y"},
		{"!code fn main() {  println!(\"hi\")  }", "fn main() {  println!(\"hi\")  }"},
		{"!code  leading space kept", " leading space kept"},
		{"!code", ""},
	}
	for _, tt := range tests {
		cmd, ok := cs.Parse(tt.text)
		if !ok || cmd.Kind != KindRelaySnippet {
			t.Fatalf("Parse(%q) = (%+v, %v), want RelaySnippet", tt.text, cmd, ok)
		}
		if cmd.Text != tt.want {
			t.Errorf("Parse(%q).Text = %q, want %q", tt.text, cmd.Text, tt.want)
		}
	}
}

func TestParseDataDrivenCommands(t *testing.T) {
	cs := testCommandSet(t)
	cmd, ok := cs.Parse("!pythonsucks")
	if !ok || cmd.Kind != KindStaticReply {
		t.Fatalf("Parse(!pythonsucks) = (%+v, %v), want StaticReply", cmd, ok)
	}
	if cmd.Text != "This must be Lord" {
		t.Errorf("reply text = %q", cmd.Text)
	}
	cmd, ok = cs.Parse("!discord")
	if !ok || cmd.Kind != KindBroadcast {
		t.Fatalf("Parse(!discord) = (%+v, %v), want Broadcast", cmd, ok)
	}
}

func TestLoadCommandSetValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"token without trigger", "replies:\n  \"hello\": \"hi\"\n"},
		{"token with whitespace", "replies:\n  \"!two words\": \"hi\"\n"},
		{"shadows builtin", "replies:\n  \"!join\": \"hi\"\n"},
		{"empty text", "replies:\n  \"!x\": \"\"\n"},
		{"reply and broadcast clash", "replies:\n  \"!x\": \"a\"\nbroadcasts:\n  \"!x\": \"b\"\n"},
		{"invalid yaml", ":\n-:-\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCommandSet([]byte(tt.yaml)); err == nil {
				t.Errorf("LoadCommandSet accepted %q, want error", tt.yaml)
			}
		})
	}
}

func TestLoadCommandSetFileFallback(t *testing.T) {
	cs, err := LoadCommandSetFile("")
	if err != nil {
		t.Fatalf("LoadCommandSetFile(\"\") error: %v", err)
	}
	if _, ok := cs.Parse("!stonk"); !ok {
		t.Error("embedded commandset missing !stonk")
	}
	if _, err := LoadCommandSetFile("does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing commandset file")
	}
}
