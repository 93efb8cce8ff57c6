package infra

import "context"

type QRISGenerator interface {
	Generate(ctx context.Context, baseString string, amount int64) (string, error)
}

var _ QRISGenerator = (*QRISClient)(nil)
