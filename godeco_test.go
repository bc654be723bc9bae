package godeco

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/internal/fixtures"
	"github.com/a-peyrard/godeco/loader"
	"github.com/a-peyrard/godeco/metadata"
)

func TestIdentity(t *testing.T) {
	t.Run("it should decode an encoded identity", func(t *testing.T) {
		// GIVEN
		name, err := EncodeIdentity("a.Decorator", "b.Subject", "subject")
		require.NoError(t, err)

		// WHEN
		id, found, err := DecodeIdentity("github.com/example/proxies." + name)

		// THEN
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "a.Decorator", id.Decorator)
		assert.Equal(t, "b.Subject", id.Subject)
		assert.Equal(t, "subject", id.Argument)
	})

	t.Run("it should refuse an empty argument", func(t *testing.T) {
		// GIVEN

		// WHEN
		_, err := EncodeIdentity("a.Decorator", "b.Subject", "")

		// THEN
		require.ErrorIs(t, err, errdefs.ErrInvalidIdentity)
		assert.ErrorContains(t, err, "argument name")
	})
}

func TestSynthesizeSource(t *testing.T) {
	t.Run("it should synthesize the forwarding methods", func(t *testing.T) {
		// GIVEN
		name, err := EncodeIdentity(fixtures.DecoratorCommand().Name, fixtures.ConcreteCommandWithTwoInterfaces().Name, "command")
		require.NoError(t, err)

		// WHEN
		text, err := SynthesizeSource(name, fixtures.DecoratorCommand(), fixtures.ConcreteCommandWithTwoInterfaces())

		// THEN
		require.NoError(t, err)
		assert.Contains(t, text, "type "+name+" struct {")
		assert.Contains(t, text, "Help() string {")
		assert.Contains(t, text, "Description() string {")
		assert.NotContains(t, text, "Run() {")
	})
}

func TestNewLoader(t *testing.T) {
	t.Run("it should resolve a proxy name", func(t *testing.T) {
		// GIVEN
		table := metadata.NewTable(fixtures.DecoratorCommand(), fixtures.ConcreteCommand())
		definer := loader.NewMemoryDefiner()
		l, err := NewLoader(table, definer)
		require.NoError(t, err)
		name, err := EncodeIdentity(fixtures.DecoratorCommand().Name, fixtures.ConcreteCommand().Name, "command")
		require.NoError(t, err)

		// WHEN
		typ, handled, err := l.Resolve(context.Background(), name)

		// THEN
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, name, typ.Name)
		assert.Equal(t, []string{name}, definer.Names())
	})
}
