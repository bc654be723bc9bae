// Package capability computes what a proxy must add to its decorator: the interface
// contracts the subject satisfies and the decorator does not, and the methods of
// those contracts the decorator does not implement.
package capability

import (
	"fmt"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/ordered"
)

type rule struct {
	modifier descriptor.Modifiers
	label    string
}

var (
	decoratorRules = []rule{
		{descriptor.Final, "final"},
		{descriptor.Anonymous, "anonymous"},
		{descriptor.Abstract, "abstract"},
	}
	subjectRules = []rule{
		{descriptor.Anonymous, "anonymous"},
		{descriptor.Abstract, "abstract"},
	}
)

// Validate checks that the decorator can be embedded and the subject instantiated.
func Validate(decorator, subject *descriptor.TypeDescriptor) error {
	if err := assertIsNot(decorator, decoratorRules); err != nil {
		return err
	}
	return assertIsNot(subject, subjectRules)
}

func assertIsNot(typ *descriptor.TypeDescriptor, rules []rule) error {
	for _, r := range rules {
		if typ.Modifiers.Has(r.modifier) {
			return fmt.Errorf("%w: %s must not be %s", errdefs.ErrPreconditionViolated, typ.Name, r.label)
		}
	}
	return nil
}

// InterfacesToImplement returns the subject interfaces missing from the decorator.
//
// Interfaces are matched by qualified name and keep the subject declaration order.
func InterfacesToImplement(decorator, subject *descriptor.TypeDescriptor) []*descriptor.TypeDescriptor {
	implemented := ordered.NewSet[string]()
	for _, iface := range decorator.Interfaces {
		implemented.Add(iface.Name)
	}

	var result []*descriptor.TypeDescriptor
	for _, iface := range subject.Interfaces {
		if !implemented.Contains(iface.Name) {
			result = append(result, iface)
		}
	}
	return result
}

// MethodsToForward returns, keyed by name, the methods of the interfaces that the
// decorator does not declare itself.
//
// When several interfaces declare the same method, the last one wins but the method
// keeps the position of its first occurrence. Methods without a declaring type are
// attributed to the interface they were found on. Static methods cannot be forwarded
// through an instance and fail with errdefs.ErrUnsupportedStatic.
func MethodsToForward(
	decorator *descriptor.TypeDescriptor,
	interfaces []*descriptor.TypeDescriptor,
) (*ordered.Map[string, descriptor.MethodDescriptor], error) {
	methods := ordered.NewMap[string, descriptor.MethodDescriptor]()
	for _, iface := range interfaces {
		for _, m := range iface.Methods {
			if decorator.HasMethod(m.Name) {
				continue
			}
			if m.Declaring == "" {
				m.Declaring = iface.Name
			}
			if m.Static {
				return nil, fmt.Errorf("%w: %s (when implementing %s)", errdefs.ErrUnsupportedStatic, m.Name, m.Declaring)
			}
			methods.Put(m.Name, m)
		}
	}
	return methods, nil
}
