package llm

import "context"

// PurposeUnknown labels calls made without WithPurpose.
const PurposeUnknown = "unknown"

type purposeKey struct{}

// WithPurpose tags ctx so the event log can attribute the call, e.g.
// "question-gen".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if purpose == "" {
		return ctx
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return PurposeUnknown
}
