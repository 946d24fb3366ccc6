package game

import "testing"

func TestTranscriptFirstEntryIsSystem(t *testing.T) {
	tr := NewTranscript("you are the game master")

	entries := tr.Snapshot()
	if len(entries) != 1 || entries[0].Role != RoleSystem {
		t.Fatalf("new transcript must hold exactly the system prompt, got %+v", entries)
	}
}

func TestTranscriptSnapshotIsACopy(t *testing.T) {
	tr := NewTranscript("sys")
	tr.Append(RoleUser, "go north")

	snap := tr.Snapshot()
	snap[0].Content = "mutated"

	if tr.Snapshot()[0].Content != "sys" {
		t.Fatal("mutating a snapshot must not touch the transcript")
	}
}

func TestTranscriptAppendPreservesOrder(t *testing.T) {
	tr := NewTranscript("sys")
	tr.Append(RoleUser, "a")
	tr.Append(RoleAssistant, "b")
	tr.Append(RoleUser, "c")

	entries := tr.Snapshot()
	want := []string{"sys", "a", "b", "c"}
	for i, content := range want {
		if entries[i].Content != content {
			t.Fatalf("entry %d = %q, want %q", i, entries[i].Content, content)
		}
	}
}

func TestTranscriptTrimKeepsSystemPrompt(t *testing.T) {
	tr := NewTranscript("sys")
	for i := 0; i < 10; i++ {
		tr.Append(RoleUser, "turn")
	}

	tr.Trim(4)

	entries := tr.Snapshot()
	if len(entries) != 4 {
		t.Fatalf("trimmed length = %d, want 4", len(entries))
	}
	if entries[0].Role != RoleSystem {
		t.Fatal("trim must never drop the system prompt")
	}
}

func TestSessionEndRecordsFirstOutcomeOnly(t *testing.T) {
	sess := NewSession("sid", "u1", "奇幻世界", "sys")
	sess.End(OutcomeTimeout)
	sess.End(OutcomeStopped)

	if sess.Status() != StatusEnded {
		t.Fatalf("status = %s, want ended", sess.Status())
	}
	if sess.Outcome() != OutcomeTimeout {
		t.Fatalf("outcome = %s, want the first terminal outcome", sess.Outcome())
	}
}
