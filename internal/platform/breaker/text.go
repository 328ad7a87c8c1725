package breaker

import "context"

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// TextGenerator runs every GenerateText call through a Breaker.
type TextGenerator struct {
	next textGenerator
	brk  *Breaker
}

func WrapText(next textGenerator, brk *Breaker) *TextGenerator {
	return &TextGenerator{next: next, brk: brk}
}

func (t *TextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	var out string
	err := t.brk.Execute(ctx, func(ctx context.Context) error {
		s, err := t.next.GenerateText(ctx, prompt)
		out = s
		return err
	})
	return out, err
}
