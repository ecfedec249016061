package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/slot"
)

func validFlow(name, locale string) *flow.Flow {
	return &flow.Flow{
		Name:   name,
		Locale: locale,
		Intent: name,
		Mode:   flow.ModeSlots,
		Slots: []slot.Definition{
			{Name: "ZipCode", Validator: "zip", Prompt: "What is your zip code?"},
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validFlow("ReplaceCard", "en_US")))

	f, err := r.Lookup("ReplaceCard", "en_US")
	require.NoError(t, err)
	assert.Equal(t, "ReplaceCard", f.Name)

	_, err = r.Lookup("ReplaceCard", "fr_FR")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestRegistry_EmptyLocaleServesAll(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validFlow("ReplaceCard", "")))

	f, err := r.Lookup("ReplaceCard", "es_US")
	require.NoError(t, err)
	assert.Equal(t, "ReplaceCard", f.Name)
}

func TestRegistry_RejectsInvalidFlow(t *testing.T) {
	r := New()
	err := r.Register(&flow.Flow{Name: "Broken", Intent: "Broken", Start: "nowhere"})
	require.Error(t, err)

	var verr *flow.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validFlow("ReplaceCard", "en_US")))
	assert.Error(t, r.Register(validFlow("ReplaceCard", "en_US")))

	// Same bot, different locale is fine.
	assert.NoError(t, r.Register(validFlow("ReplaceCard", "es_US")))
}

func TestRegistry_Names(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validFlow("MainMenu", "")))
	require.NoError(t, r.Register(validFlow("ReplaceCard", "en_US")))
	require.NoError(t, r.Register(validFlow("ReplaceCard", "es_US")))

	assert.Equal(t, []string{"MainMenu", "ReplaceCard"}, r.Names())
}

func TestRegistry_Reload(t *testing.T) {
	ctx := context.Background()
	r, err := NewFromSource(ctx, memory.NewSource(validFlow("ReplaceCard", "")))
	require.NoError(t, err)

	require.NoError(t, r.Reload(ctx, memory.NewSource(validFlow("MainMenu", ""))))

	_, err = r.Lookup("ReplaceCard", "")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	_, err = r.Lookup("MainMenu", "")
	assert.NoError(t, err)
}

func TestRegistry_ReloadKeepsOldOnError(t *testing.T) {
	ctx := context.Background()
	r, err := NewFromSource(ctx, memory.NewSource(validFlow("ReplaceCard", "")))
	require.NoError(t, err)

	broken := memory.NewSource(&flow.Flow{Name: "Broken", Intent: "Broken", Start: "nowhere"})
	require.Error(t, r.Reload(ctx, broken))

	// The previous flow set is still being served.
	_, err = r.Lookup("ReplaceCard", "")
	assert.NoError(t, err)
}
