package aspect

// Shape classifies the form a callable was supplied in.
type Shape string

const (
	// ShapeFunc is an unnamed function value: a top-level function,
	// closure, or bound method value.
	ShapeFunc Shape = "func"

	// ShapeNamedFunc is a value of a named function type, the type-erased
	// wrapper form (e.g. http.HandlerFunc).
	ShapeNamedFunc Shape = "named-func"

	// ShapeFuncType is a raw function type inspected without a value.
	ShapeFuncType Shape = "func-type"

	// ShapeMethod is a method expression whose first parameter is the
	// owning type: (*T).Method or T.Method.
	ShapeMethod Shape = "method"
)

// Strategy is one of the four invocation paths, keyed by
// {member, free} x {void, value}.
type Strategy uint8

const (
	// StrategyFreeVoid calls a free callable and passes no result on.
	StrategyFreeVoid Strategy = iota
	// StrategyFreeValue calls a free callable and threads its results.
	StrategyFreeValue
	// StrategyMemberVoid calls a method bound to the held target.
	StrategyMemberVoid
	// StrategyMemberValue calls a method bound to the held target and
	// threads its results.
	StrategyMemberValue
)

var strategyNames = [...]string{
	StrategyFreeVoid:    "free-void",
	StrategyFreeValue:   "free-value",
	StrategyMemberVoid:  "member-void",
	StrategyMemberValue: "member-value",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// Member reports whether the strategy binds the call to a target.
func (s Strategy) Member() bool {
	return s == StrategyMemberVoid || s == StrategyMemberValue
}

// Void reports whether the strategy passes no result to after-hooks.
func (s Strategy) Void() bool {
	return s == StrategyFreeVoid || s == StrategyMemberVoid
}

// selectStrategy resolves the strategy for a classified callable.
func selectStrategy(member, void bool) Strategy {
	switch {
	case member && void:
		return StrategyMemberVoid
	case member:
		return StrategyMemberValue
	case void:
		return StrategyFreeVoid
	default:
		return StrategyFreeValue
	}
}

// validShapes contains all shapes the introspector can produce.
var validShapes = map[Shape]bool{
	ShapeFunc:      true,
	ShapeNamedFunc: true,
	ShapeFuncType:  true,
	ShapeMethod:    true,
}

// IsValidShape returns true if the shape is a known callable shape.
func IsValidShape(s Shape) bool {
	return validShapes[s]
}
