// Package docaccess checks uploaded office documents for accessibility
// defects: embedded images without alternate text and images whose
// luminance contrast is too low to read.
package docaccess

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/brunobiangulo/docaccess/container"
	"github.com/brunobiangulo/docaccess/contrast"
	"github.com/brunobiangulo/docaccess/docx"
	"github.com/brunobiangulo/docaccess/parser"
)

// Evaluator classifies documents.
type Evaluator interface {
	// Analyze classifies doc. The error is non-nil only when ctx is done
	// before the analysis completes; every document failure is reported as
	// a Corrupted result instead.
	Analyze(ctx context.Context, doc Document) (Result, error)
}

// TextExtractor probes a document for extractable text. It is satisfied by
// *parser.Registry.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Option configures an Evaluator.
type Option func(*evaluator)

// WithLogger sets the logger used for skipped images and failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *evaluator) { e.logger = l }
}

// WithExtractor replaces the text probe.
func WithExtractor(x TextExtractor) Option {
	return func(e *evaluator) { e.extractor = x }
}

type logAttrsKey struct{}

// ContextWithLogAttrs returns a copy of ctx carrying slog key/value pairs
// that Analyze adds to every line it logs, such as a request id.
func ContextWithLogAttrs(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(logAttrsKey{}).([]any)
	merged := append(append([]any(nil), prev...), args...)
	return context.WithValue(ctx, logAttrsKey{}, merged)
}

type evaluator struct {
	cfg       Config
	extractor TextExtractor
	analyzer  contrast.Analyzer
	logger    *slog.Logger
}

// New creates an Evaluator from cfg.
func New(cfg Config, opts ...Option) (Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &evaluator{
		cfg:       cfg,
		extractor: parser.NewRegistry(),
		analyzer: contrast.Analyzer{
			Threshold: cfg.ContrastThreshold,
			MaxPixels: cfg.MaxImagePixels,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *evaluator) Analyze(ctx context.Context, doc Document) (res Result, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := e.logger.With("document", doc.Name, "media_type", string(doc.MediaType))
	if attrs, ok := ctx.Value(logAttrsKey{}).([]any); ok {
		log = log.With(attrs...)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panicked",
				"error", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			res, err = Corrupted{Reason: ReasonCorrupted}, nil
		}
	}()

	res, err = e.analyze(ctx, log, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		reason := reasonFor(err)
		log.Info("document rejected", "reason", reason, "error", err)
		return Corrupted{Reason: reason}, nil
	}

	log.Debug("document analysed", "result", string(res.Kind()))
	return res, nil
}

func (e *evaluator) analyze(ctx context.Context, log *slog.Logger, doc Document) (Result, error) {
	if _, err := e.extractor.Extract(ctx, doc.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyFile, err)
	}

	// Image checks only apply to WordprocessingML packages.
	if doc.MediaType != MediaDOCX {
		return Valid{}, nil
	}

	c, err := container.Open(doc.Data)
	if err != nil {
		return nil, err
	}

	documentXML, ok, err := c.ReadText(docx.MainPart)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStructure
	}

	var missingAlt []AltTextFinding
	for _, f := range docx.ScanDescriptors(documentXML) {
		missingAlt = append(missingAlt, AltTextFinding{ImageTag: f.Tag})
	}

	manifest, ok, err := c.Read(docx.RelationshipsPart)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidRelationships
	}

	rels, err := docx.ResolveRelationships(manifest)
	if err != nil {
		return nil, err
	}
	images := docx.LoadImages(c, rels)

	badContrast, err := e.measureContrast(ctx, log, images)
	if err != nil {
		return nil, err
	}

	return classify(missingAlt, badContrast), nil
}

// measureContrast analyses every image on a bounded worker pool and returns
// the low-contrast ones in manifest order. Images that cannot be decoded are
// logged and skipped.
func (e *evaluator) measureContrast(ctx context.Context, log *slog.Logger, images []docx.Image) ([]ContrastFinding, error) {
	results := make([]*ContrastFinding, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.ImageWorkers)

	for i, img := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					log.Warn("skipping image after decoder panic", "image", img.EntryPath, "error", fmt.Sprintf("%v", r))
				}
			}()

			res, err := e.analyzer.Analyze(img.Data)
			if err != nil {
				log.Warn("skipping undecodable image", "image", img.EntryPath, "error", err)
				return nil
			}
			if !res.Good {
				results[i] = &ContrastFinding{ImagePath: img.Target, ContrastRatio: res.Ratio}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []ContrastFinding
	for _, f := range results {
		if f != nil {
			findings = append(findings, *f)
		}
	}
	return findings, nil
}
