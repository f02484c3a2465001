package learning

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

type BlockType string

const (
	BlockVideo     BlockType = "video"
	BlockVocab     BlockType = "vocab"
	BlockFlashcard BlockType = "flashcard"
	BlockGrammar   BlockType = "grammar"
	BlockListening BlockType = "listening"
	BlockSpeaking  BlockType = "speaking"
	BlockQuiz      BlockType = "quiz"
)

var ErrInvalidBlock = errors.New("invalid content block")

// BlockPayload is implemented only by the seven payload structs below.
type BlockPayload interface {
	blockType() BlockType
}

type VideoBlock struct {
	VideoURL         string `json:"video_url"`
	VideoTitle       string `json:"video_title"`
	VideoDescription string `json:"video_description"`
}

type VocabWord struct {
	Word            string `json:"word"`
	Meaning         string `json:"meaning"`
	ExampleSentence string `json:"example_sentence"`
	AudioURL        string `json:"audio_url"`
}

type VocabBlock struct {
	Words []VocabWord `json:"words"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
	Image string `json:"image"`
}

type FlashcardBlock struct {
	Cards []Flashcard `json:"cards"`
}

type GrammarExample struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
}

type GrammarBlock struct {
	RuleTitle   string           `json:"rule_title"`
	Explanation string           `json:"explanation"`
	Examples    []GrammarExample `json:"examples"`
}

type ListeningQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type ListeningBlock struct {
	AudioURL   string              `json:"audio_url"`
	Transcript string              `json:"transcript"`
	Questions  []ListeningQuestion `json:"questions"`
}

type SpeakingBlock struct {
	PromptText      string `json:"prompt_text"`
	ModelAnswer     string `json:"model_answer"`
	DifficultyLevel string `json:"difficulty_level"` // easy|medium|hard
}

type QuizQuestion struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"` // mcq|fill_blank|match
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type QuizBlock struct {
	Questions []QuizQuestion `json:"questions"`
}

func (VideoBlock) blockType() BlockType     { return BlockVideo }
func (VocabBlock) blockType() BlockType     { return BlockVocab }
func (FlashcardBlock) blockType() BlockType { return BlockFlashcard }
func (GrammarBlock) blockType() BlockType   { return BlockGrammar }
func (ListeningBlock) blockType() BlockType { return BlockListening }
func (SpeakingBlock) blockType() BlockType  { return BlockSpeaking }
func (QuizBlock) blockType() BlockType      { return BlockQuiz }

// ContentBlock is one typed unit of lesson material. On the wire it is
// {"type": t, "block_order": n, t: {...payload}} with exactly one payload key.
type ContentBlock struct {
	Type       BlockType
	BlockOrder int
	Payload    BlockPayload
}

// NewBlock derives Type from the payload.
func NewBlock(order int, p BlockPayload) ContentBlock {
	return ContentBlock{Type: p.blockType(), BlockOrder: order, Payload: p}
}

func (b ContentBlock) MarshalJSON() ([]byte, error) {
	if b.Payload == nil {
		return nil, fmt.Errorf("%w: %q block has no payload", ErrInvalidBlock, b.Type)
	}
	t := b.Payload.blockType()
	return json.Marshal(map[string]any{
		"type":        t,
		"block_order": b.BlockOrder,
		string(t):     b.Payload,
	})
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}

	var t BlockType
	if err := json.Unmarshal(raw["type"], &t); err != nil || t == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidBlock)
	}
	order := 1
	if v, ok := raw["block_order"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &order); err != nil {
			return fmt.Errorf("%w: block_order must be an integer", ErrInvalidBlock)
		}
	}
	for k, v := range raw {
		if k == "type" || k == "block_order" || isNull(v) {
			continue
		}
		if BlockType(k) != t {
			return fmt.Errorf("%w: payload %q does not match type %q", ErrInvalidBlock, k, t)
		}
	}
	body, ok := raw[string(t)]
	if !ok || isNull(body) {
		return fmt.Errorf("%w: %q block has no payload", ErrInvalidBlock, t)
	}

	p, err := decodePayload(t, body)
	if err != nil {
		return err
	}
	*b = ContentBlock{Type: t, BlockOrder: order, Payload: p}
	return nil
}

func decodePayload(t BlockType, body json.RawMessage) (BlockPayload, error) {
	var (
		p   BlockPayload
		err error
	)
	switch t {
	case BlockVideo:
		var v VideoBlock
		err = json.Unmarshal(body, &v)
		p = v
	case BlockVocab:
		var v VocabBlock
		err = json.Unmarshal(body, &v)
		p = v
	case BlockFlashcard:
		var v FlashcardBlock
		err = json.Unmarshal(body, &v)
		p = v
	case BlockGrammar:
		var v GrammarBlock
		err = json.Unmarshal(body, &v)
		p = v
	case BlockListening:
		var v ListeningBlock
		err = json.Unmarshal(body, &v)
		p = v
	case BlockSpeaking:
		var v SpeakingBlock
		err = json.Unmarshal(body, &v)
		if v.DifficultyLevel == "" {
			v.DifficultyLevel = "easy"
		}
		p = v
	case BlockQuiz:
		var v QuizBlock
		err = json.Unmarshal(body, &v)
		for i := range v.Questions {
			if v.Questions[i].QuestionType == "" {
				v.Questions[i].QuestionType = "mcq"
			}
		}
		p = v
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidBlock, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrInvalidBlock, t, err)
	}
	return p, nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// Validate checks the enum-valued payload fields and that Type agrees with
// the payload.
func (b ContentBlock) Validate() error {
	if b.Payload == nil {
		return fmt.Errorf("%w: %q block has no payload", ErrInvalidBlock, b.Type)
	}
	if b.Type != b.Payload.blockType() {
		return fmt.Errorf("%w: payload %q does not match type %q", ErrInvalidBlock, b.Payload.blockType(), b.Type)
	}
	switch p := b.Payload.(type) {
	case VideoBlock, VocabBlock, FlashcardBlock, GrammarBlock, ListeningBlock:
		return nil
	case SpeakingBlock:
		switch p.DifficultyLevel {
		case "easy", "medium", "hard":
			return nil
		}
		return fmt.Errorf("%w: difficulty_level %q", ErrInvalidBlock, p.DifficultyLevel)
	case QuizBlock:
		for i, q := range p.Questions {
			switch q.QuestionType {
			case "mcq", "fill_blank", "match":
			default:
				return fmt.Errorf("%w: quiz question %d has question_type %q", ErrInvalidBlock, i, q.QuestionType)
			}
		}
		return nil
	default:
		panic(fmt.Sprintf("learning: unreachable block payload %T", p))
	}
}

// ItemCount is the number of practice items a block carries; video and
// speaking blocks count as one.
func (b ContentBlock) ItemCount() int {
	switch p := b.Payload.(type) {
	case VideoBlock, SpeakingBlock:
		return 1
	case VocabBlock:
		return len(p.Words)
	case FlashcardBlock:
		return len(p.Cards)
	case GrammarBlock:
		return len(p.Examples)
	case ListeningBlock:
		return len(p.Questions)
	case QuizBlock:
		return len(p.Questions)
	case nil:
		return 0
	default:
		panic(fmt.Sprintf("learning: unreachable block payload %T", p))
	}
}

// ValidateBlocks validates every block in order.
func ValidateBlocks(blocks []ContentBlock) error {
	for i, b := range blocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

// SortBlocks returns a copy stably sorted by BlockOrder.
func SortBlocks(blocks []ContentBlock) []ContentBlock {
	out := make([]ContentBlock, len(blocks))
	copy(out, blocks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BlockOrder < out[j].BlockOrder })
	return out
}
