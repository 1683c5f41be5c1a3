// Package pdf renders printable fee receipts.
package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

// ReceiptDocument carries everything the rendered page shows. Amounts arrive
// preformatted so the renderer stays free of currency logic.
type ReceiptDocument struct {
	SchoolName    string
	ReceiptNumber string
	StudentName   string
	Amount        string
	Date          string
	Description   string
	PaymentMethod string
	IssuedBy      string
	ParentEmail   string
}

type Provider interface {
	RenderReceipt(ctx context.Context, doc ReceiptDocument) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
