package pipeline

import "testing"

func TestAssembler_JoinsFragmentsIntoSentence(t *testing.T) {
	assembler := NewAssembler()
	assembler.AddFragment("안녕하세요")
	assembler.AddFragment("  만나서 반갑습니다  ")

	sentence, ok := assembler.FinishSentence()
	if !ok {
		t.Fatal("expected a completed sentence")
	}
	if sentence != "안녕하세요 만나서 반갑습니다" {
		t.Fatalf("got %q, want joined sentence", sentence)
	}

	got, ok := assembler.NextSentence()
	if !ok || got != sentence {
		t.Fatalf("queued sentence: got %q ok=%v, want %q", got, ok, sentence)
	}
}

func TestAssembler_EmptyUtteranceProducesNothing(t *testing.T) {
	assembler := NewAssembler()
	assembler.AddFragment("   ")
	assembler.AddFragment("")

	if sentence, ok := assembler.FinishSentence(); ok {
		t.Fatalf("expected no sentence, got %q", sentence)
	}
	if assembler.PendingCount() != 0 {
		t.Fatalf("pending count: got %d, want 0", assembler.PendingCount())
	}
}

func TestAssembler_RepeatedUtteranceEndIsHarmless(t *testing.T) {
	assembler := NewAssembler()
	assembler.AddFragment("하나")
	if _, ok := assembler.FinishSentence(); !ok {
		t.Fatal("expected first finish to produce a sentence")
	}
	if sentence, ok := assembler.FinishSentence(); ok {
		t.Fatalf("expected second finish to be empty, got %q", sentence)
	}
	if assembler.PendingCount() != 1 {
		t.Fatalf("pending count: got %d, want 1", assembler.PendingCount())
	}
}

func TestAssembler_SentencesKeepCompletionOrder(t *testing.T) {
	assembler := NewAssembler()
	for _, text := range []string{"첫째", "둘째", "셋째"} {
		assembler.AddFragment(text)
		if _, ok := assembler.FinishSentence(); !ok {
			t.Fatalf("sentence %q not completed", text)
		}
	}

	for _, want := range []string{"첫째", "둘째", "셋째"} {
		got, ok := assembler.NextSentence()
		if !ok || got != want {
			t.Fatalf("got %q ok=%v, want %q", got, ok, want)
		}
	}
	if _, ok := assembler.NextSentence(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestAssembler_ClearDropsQueueAndFragments(t *testing.T) {
	assembler := NewAssembler()
	assembler.AddFragment("완성된 문장")
	assembler.FinishSentence()
	assembler.AddFragment("진행 중인 문장")

	if dropped := assembler.Clear(); dropped != 1 {
		t.Fatalf("dropped: got %d, want 1", dropped)
	}
	if _, ok := assembler.NextSentence(); ok {
		t.Fatal("expected queue to be empty after clear")
	}
	if sentence, ok := assembler.FinishSentence(); ok {
		t.Fatalf("expected in-progress fragments to be dropped, got %q", sentence)
	}
}
