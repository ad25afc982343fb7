package ingest

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
)

// Inspector sniffs decoded bytes and checks them against the declared format.
type Inspector struct {
	MaxPDFPages int
}

func NewInspector(maxPDFPages int) *Inspector {
	if maxPDFPages <= 0 {
		maxPDFPages = constants.DefaultMaxPDFPages
	}
	return &Inspector{MaxPDFPages: maxPDFPages}
}

// Inspect returns the page count (1 for images) or an InputValidation error
// when the content does not match the declared format.
func (i *Inspector) Inspect(format string, data []byte) (int, error) {
	if format == constants.FormatPDF {
		return i.inspectPDF(data)
	}

	cfg, got, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, common.InputError(common.CodeContentMismatch,
			fmt.Sprintf("content is not a readable %s image", format), err)
	}
	if got != format {
		return 0, common.InputError(common.CodeContentMismatch,
			fmt.Sprintf("declared %s but content is %s", format, got), common.ErrInvalidInput)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, common.InputError(common.CodeContentMismatch, "image has no pixels", common.ErrInvalidInput)
	}
	return 1, nil
}

func (i *Inspector) inspectPDF(data []byte) (int, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, common.InputError(common.CodeContentMismatch, "declared pdf but content has no PDF header", common.ErrInvalidInput)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, common.InputError(common.CodeContentMismatch, "pdf could not be read", err)
	}
	if ctx.PageCount < 1 {
		return 0, common.InputError(common.CodeContentMismatch, "pdf has no pages", common.ErrInvalidInput)
	}
	if ctx.PageCount > i.MaxPDFPages {
		return 0, common.InputError(common.CodeContentMismatch,
			fmt.Sprintf("pdf has %d pages, at most %d are accepted", ctx.PageCount, i.MaxPDFPages), common.ErrInvalidInput)
	}
	return ctx.PageCount, nil
}
