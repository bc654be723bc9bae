package metadata

import (
	"go/token"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func Test_parseForwardAnnotations(t *testing.T) {
	logger := zerolog.Nop()
	position := token.Position{Filename: "commands.go", Line: 12}

	t.Run("it should parse the subject and the argument", func(t *testing.T) {
		// GIVEN
		doc := "DecoratorCommand prints a line.\n\n@forward subject=\"ConcreteCommand\" argument=\"command\"\n"

		// WHEN
		annotations := parseForwardAnnotations(&logger, "github.com/example/commands.DecoratorCommand", doc, position)

		// THEN
		assert.Equal(t, []Annotation{{
			Decorator: "github.com/example/commands.DecoratorCommand",
			Subject:   "github.com/example/commands.ConcreteCommand",
			Argument:  "command",
			Position:  position,
		}}, annotations)
	})

	t.Run("it should accept unquoted and qualified values", func(t *testing.T) {
		// GIVEN
		doc := "@forward subject=github.com/other/pkg.Concrete argument=cmd"

		// WHEN
		annotations := parseForwardAnnotations(&logger, "github.com/example/commands.DecoratorCommand", doc, position)

		// THEN
		assert.Len(t, annotations, 1)
		assert.Equal(t, "github.com/other/pkg.Concrete", annotations[0].Subject)
		assert.Equal(t, "cmd", annotations[0].Argument)
	})

	t.Run("it should skip an incomplete annotation", func(t *testing.T) {
		// GIVEN
		doc := "@forward subject=\"ConcreteCommand\"\n@forwarded subject=\"A\" argument=\"b\""

		// WHEN
		annotations := parseForwardAnnotations(&logger, "github.com/example/commands.DecoratorCommand", doc, position)

		// THEN
		assert.Empty(t, annotations)
	})
}

func Test_hasFinalAnnotation(t *testing.T) {
	t.Run("it should find the final annotation on its own line", func(t *testing.T) {
		assert.True(t, hasFinalAnnotation("FinalCommand can not be decorated.\n\n@final\n"))
		assert.True(t, hasFinalAnnotation("  @final because of reasons"))
		assert.False(t, hasFinalAnnotation("@finally"))
		assert.False(t, hasFinalAnnotation("it is not @final"))
	})
}

func Test_parseProperties(t *testing.T) {
	t.Run("it should parse quoted and unquoted properties", func(t *testing.T) {
		// WHEN
		properties := parseProperties(`@forward subject="a b" argument=c`, forwardAnnotationTag)

		// THEN
		assert.Equal(t, map[string]string{"subject": "a b", "argument": "c"}, properties)
	})

	t.Run("it should return no property for a bare tag", func(t *testing.T) {
		// WHEN
		properties := parseProperties("@forward", forwardAnnotationTag)

		// THEN
		assert.Empty(t, properties)
	})
}
