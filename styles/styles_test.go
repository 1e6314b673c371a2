package styles

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/overset/contract"
)

// fakeHost 记录每次 set 调用；rejected 中的样式会以 ErrNotFound 拒绝。
type fakeHost struct {
	paragraph []string
	character []string
	current   map[string]string
	rejected  map[string]bool
	fail      error
	sets      []string
}

func (f *fakeHost) CharacterStyles() []string { return f.character }
func (f *fakeHost) ParagraphStyles() []string { return f.paragraph }

func (f *fakeHost) CharacterStyle(frame string) (string, error) { return f.get(frame) }
func (f *fakeHost) ParagraphStyle(frame string) (string, error) { return f.get(frame) }

func (f *fakeHost) get(frame string) (string, error) {
	s, ok := f.current[frame]
	if !ok {
		return "", contract.ErrNotFound
	}
	return s, nil
}

func (f *fakeHost) SetCharacterStyle(style, frame string) error { return f.set(style, frame) }
func (f *fakeHost) SetParagraphStyle(style, frame string) error { return f.set(style, frame) }

func (f *fakeHost) set(style, frame string) error {
	f.sets = append(f.sets, style)
	if f.fail != nil {
		return f.fail
	}
	if f.rejected[style] {
		return contract.ErrNotFound
	}
	f.current[frame] = style
	return nil
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"cs--title", "title"}, Candidates("cs", "title"))
	assert.Equal(t, []string{"title"}, Candidates("", "title"))
}

func TestKindTable(t *testing.T) {
	assert.Equal(t, KindCharacter, KindForKey("date"))
	assert.Equal(t, KindCharacter, KindForKey("series"))
	assert.Equal(t, KindParagraph, KindForKey("title"))
	assert.Equal(t, "Default Paragraph Style", KindParagraph.DefaultStyle())
	assert.Equal(t, "character", KindCharacter.String())

	k, err := ParseKind("char")
	require.NoError(t, err)
	assert.Equal(t, KindCharacter, k)
	_, err = ParseKind("table")
	assert.Error(t, err)
}

func TestApplyPrefersLanguageStyle(t *testing.T) {
	h := &fakeHost{
		paragraph: []string{"cs--title", "title"},
		current:   map[string]string{"title": "Body"},
	}
	res, err := Apply(h, KindParagraph, "title", Candidates("cs", "title"), nil)
	require.NoError(t, err)
	assert.Equal(t, "cs--title", res.Applied)
	assert.Equal(t, []string{"cs--title"}, h.sets)
}

func TestApplySkipsUnavailableCandidates(t *testing.T) {
	h := &fakeHost{
		paragraph: []string{"title"},
		current:   map[string]string{"title": "Body"},
	}
	res, err := Apply(h, KindParagraph, "title", Candidates("de", "title"), nil)
	require.NoError(t, err)
	assert.Equal(t, "title", res.Applied)
	assert.Equal(t, []string{"title"}, res.Tried)
}

func TestApplyFallsBackToCurrentStyle(t *testing.T) {
	h := &fakeHost{
		character: []string{"date"},
		current:   map[string]string{"date": ""},
		rejected:  map[string]bool{"date": true},
	}
	res, err := Apply(h, KindCharacter, "date", Candidates("", "date"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Default Character Style", res.Applied)
	assert.Equal(t, []string{"date", "Default Character Style"}, res.Tried)
}

func TestApplyStopsOnHostFailure(t *testing.T) {
	boom := errors.New("host closed")
	h := &fakeHost{paragraph: []string{"title"}, current: map[string]string{"title": "Body"}, fail: boom}
	_, err := Apply(h, KindParagraph, "title", []string{"title"}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, h.sets, 1)
}

func TestApplyUnknownFrame(t *testing.T) {
	h := &fakeHost{current: map[string]string{}}
	_, err := Apply(h, KindParagraph, "ghost", []string{"x"}, nil)
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestApplyAllRejected(t *testing.T) {
	h := &fakeHost{
		paragraph: []string{"title"},
		current:   map[string]string{"title": "Gone"},
		rejected:  map[string]bool{"title": true, "Gone": true},
	}
	_, err := Apply(h, KindParagraph, "title", []string{"title"}, nil)
	assert.ErrorIs(t, err, contract.ErrNotFound)
}
