package metadata

import (
	"fmt"
	"go/token"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/a-peyrard/godeco/descriptor"
)

const (
	finalAnnotationTag   = "@final"
	forwardAnnotationTag = "@forward"
)

var (
	propertyPattern        = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|([\w./-]+))`)
	knownForwardProperties = []string{"subject", "argument"}
)

// Annotation asks for the proxy of a decorator type, declared in its doc comment:
//
//	// @forward subject="ConcreteCommand" argument="command"
//
// An unqualified subject lives in the package of the decorator.
type Annotation struct {
	Decorator string
	Subject   string
	Argument  string
	Position  token.Position
}

func (a Annotation) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", forwardAnnotationTag, a.Decorator, a.Subject, a.Argument)
}

// parseForwardAnnotations finds the @forward lines of the doc comment of a decorator.
func parseForwardAnnotations(
	logger *zerolog.Logger,
	decorator string,
	docText string,
	position token.Position,
) []Annotation {
	var annotations []Annotation
	for _, line := range strings.Split(docText, "\n") {
		line = strings.TrimSpace(line)
		if !hasTag(line, forwardAnnotationTag) {
			continue
		}

		properties := parseProperties(line, forwardAnnotationTag)
		for key := range properties {
			if !contains(knownForwardProperties, key) {
				logger.Warn().Msgf("Unknown property %s in %s, skipping it", key, line)
			}
		}
		subject, argument := properties["subject"], properties["argument"]
		if subject == "" || argument == "" {
			logger.Error().Msgf("%s at %s must name a subject and an argument: %s", forwardAnnotationTag, position, line)
			continue
		}

		pkg, _ := descriptor.SplitQualified(decorator)
		if namespace, _ := descriptor.SplitQualified(subject); namespace == "" {
			subject = descriptor.Qualify(pkg, subject)
		}
		annotations = append(annotations, Annotation{
			Decorator: decorator,
			Subject:   subject,
			Argument:  argument,
			Position:  position,
		})
	}
	return annotations
}

// hasFinalAnnotation tells if a doc comment marks its type as final.
func hasFinalAnnotation(docText string) bool {
	for _, line := range strings.Split(docText, "\n") {
		if hasTag(strings.TrimSpace(line), finalAnnotationTag) {
			return true
		}
	}
	return false
}

func hasTag(line, tag string) bool {
	rest, found := strings.CutPrefix(line, tag)
	return found && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

func parseProperties(line string, tag string) map[string]string {
	properties := make(map[string]string)

	content := strings.TrimSpace(strings.TrimPrefix(line, tag))
	if content == "" {
		return properties
	}

	for _, match := range propertyPattern.FindAllStringSubmatch(content, -1) {
		key := match[1]
		// match[2] is quoted value, match[3] is unquoted value
		value := match[2]
		if value == "" {
			value = match[3]
		}
		properties[key] = value
	}
	return properties
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
