package learning

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestContentBlock_RoundTripAllVariants(t *testing.T) {
	in := []ContentBlock{
		NewBlock(1, VideoBlock{VideoURL: "https://v/1", VideoTitle: "Intro"}),
		NewBlock(2, VocabBlock{Words: []VocabWord{{Word: "bonjour", Meaning: "hello"}}}),
		NewBlock(3, FlashcardBlock{Cards: []Flashcard{{Front: "chat", Back: "cat"}}}),
		NewBlock(4, GrammarBlock{RuleTitle: "Articles", Examples: []GrammarExample{{Source: "le chat", Translation: "the cat"}}}),
		NewBlock(5, ListeningBlock{AudioURL: "a.mp3", Questions: []ListeningQuestion{{Question: "?", Options: []string{"a", "b"}, CorrectAnswer: "a"}}}),
		NewBlock(6, SpeakingBlock{PromptText: "Say hi", DifficultyLevel: "medium"}),
		NewBlock(7, QuizBlock{Questions: []QuizQuestion{{QuestionText: "1+1", QuestionType: "mcq", Options: []string{"1", "2"}, CorrectAnswer: "2"}}}),
	}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out []ContentBlock
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d blocks, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Type != in[i].Type || out[i].BlockOrder != in[i].BlockOrder {
			t.Fatalf("block %d: got %+v want %+v", i, out[i], in[i])
		}
		if err := out[i].Validate(); err != nil {
			t.Fatalf("block %d invalid after round trip: %v", i, err)
		}
	}
	if sp, ok := out[5].Payload.(SpeakingBlock); !ok || sp.DifficultyLevel != "medium" {
		t.Fatalf("speaking payload lost: %#v", out[5].Payload)
	}
}

func TestContentBlock_WireShapeHasSinglePayloadKey(t *testing.T) {
	raw, err := json.Marshal(NewBlock(3, VideoBlock{VideoURL: "u"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	_ = json.Unmarshal(raw, &m)
	if len(m) != 3 {
		t.Fatalf("expected type, block_order and one payload key, got %s", raw)
	}
	if _, ok := m["video"]; !ok {
		t.Fatalf("payload key should match type: %s", raw)
	}
}

func TestContentBlock_DecodeRejects(t *testing.T) {
	cases := map[string]string{
		"unknown type":    `{"type":"poem","block_order":1,"poem":{}}`,
		"missing type":    `{"block_order":1,"video":{}}`,
		"missing payload": `{"type":"video","block_order":1}`,
		"mismatched key":  `{"type":"video","block_order":1,"quiz":{"questions":[]}}`,
		"two payloads":    `{"type":"video","video":{},"vocab":{"words":[]}}`,
		"bad block_order": `{"type":"video","block_order":"first","video":{}}`,
		"payload not obj": `{"type":"vocab","vocab":{"words":"many"}}`,
	}
	for name, body := range cases {
		var b ContentBlock
		err := json.Unmarshal([]byte(body), &b)
		if !errors.Is(err, ErrInvalidBlock) {
			t.Fatalf("%s: expected ErrInvalidBlock, got %v", name, err)
		}
	}
}

func TestContentBlock_DecodeDefaults(t *testing.T) {
	var b ContentBlock
	if err := json.Unmarshal([]byte(`{"type":"speaking","speaking":{"prompt_text":"x"},"quiz":null}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.BlockOrder != 1 {
		t.Fatalf("expected default block_order 1, got %d", b.BlockOrder)
	}
	if sp := b.Payload.(SpeakingBlock); sp.DifficultyLevel != "easy" {
		t.Fatalf("expected default difficulty easy, got %q", sp.DifficultyLevel)
	}

	var q ContentBlock
	if err := json.Unmarshal([]byte(`{"type":"quiz","quiz":{"questions":[{"question_text":"?"}]}}`), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if qq := q.Payload.(QuizBlock); qq.Questions[0].QuestionType != "mcq" {
		t.Fatalf("expected default question_type mcq, got %q", qq.Questions[0].QuestionType)
	}
}

func TestContentBlock_Validate(t *testing.T) {
	bad := []ContentBlock{
		{Type: BlockVideo},
		{Type: BlockQuiz, Payload: VideoBlock{}},
		NewBlock(1, SpeakingBlock{DifficultyLevel: "extreme"}),
		NewBlock(1, QuizBlock{Questions: []QuizQuestion{{QuestionType: "essay"}}}),
	}
	for i, b := range bad {
		if err := b.Validate(); !errors.Is(err, ErrInvalidBlock) {
			t.Fatalf("case %d: expected ErrInvalidBlock, got %v", i, err)
		}
	}
	err := ValidateBlocks([]ContentBlock{NewBlock(1, VideoBlock{}), bad[2]})
	if err == nil || !strings.Contains(err.Error(), "block 1") {
		t.Fatalf("expected error naming block 1, got %v", err)
	}
}

func TestSortBlocks_StableByOrder(t *testing.T) {
	in := []ContentBlock{
		NewBlock(3, VideoBlock{VideoTitle: "c"}),
		NewBlock(1, VideoBlock{VideoTitle: "a1"}),
		NewBlock(2, VideoBlock{VideoTitle: "b"}),
		NewBlock(1, VideoBlock{VideoTitle: "a2"}),
	}
	out := SortBlocks(in)
	want := []string{"a1", "a2", "b", "c"}
	for i, w := range want {
		if got := out[i].Payload.(VideoBlock).VideoTitle; got != w {
			t.Fatalf("position %d: got %q want %q", i, got, w)
		}
	}
	if in[0].BlockOrder != 3 {
		t.Fatalf("SortBlocks must not mutate its input")
	}
}

func TestItemCount(t *testing.T) {
	if n := NewBlock(1, VocabBlock{Words: make([]VocabWord, 3)}).ItemCount(); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	if n := NewBlock(1, VideoBlock{}).ItemCount(); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
}
