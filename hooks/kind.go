// Copyright © 2024 The ELPS authors

package hooks

// Kind classifies a hook record.
type Kind int

const (
	KindUnknown          Kind = iota // created by a deprecation marker; true kind not yet seen
	KindAction                       // do_action
	KindFilter                       // apply_filters
	KindActionReference              // do_action_ref_array
	KindFilterReference              // apply_filters_ref_array
	KindActionDeprecated             // do_action_deprecated
	KindFilterDeprecated             // apply_filters_deprecated
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindFilter:
		return "filter"
	case KindActionReference:
		return "action_reference"
	case KindFilterReference:
		return "filter_reference"
	case KindActionDeprecated:
		return "action_deprecated"
	case KindFilterDeprecated:
		return "filter_deprecated"
	default:
		return ""
	}
}

// ParseKind returns the kind for a corpus type string. Unrecognized
// strings yield KindUnknown and false.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "action":
		return KindAction, true
	case "filter":
		return KindFilter, true
	case "action_reference":
		return KindActionReference, true
	case "filter_reference":
		return KindFilterReference, true
	case "action_deprecated":
		return KindActionDeprecated, true
	case "filter_deprecated":
		return KindFilterDeprecated, true
	case "":
		return KindUnknown, true
	}
	return KindUnknown, false
}

// IsAction reports whether k is an action or one of its variants.
func (k Kind) IsAction() bool {
	return k == KindAction || k == KindActionReference || k == KindActionDeprecated
}

// IsFilter reports whether k is a filter or one of its variants.
func (k Kind) IsFilter() bool {
	return k == KindFilter || k == KindFilterReference || k == KindFilterDeprecated
}

// IsDeprecated reports whether k is a deprecated variant.
func (k Kind) IsDeprecated() bool {
	return k == KindActionDeprecated || k == KindFilterDeprecated
}

// Base maps deprecated variants to their plain kind.
func (k Kind) Base() Kind {
	switch k {
	case KindActionDeprecated:
		return KindAction
	case KindFilterDeprecated:
		return KindFilter
	}
	return k
}
