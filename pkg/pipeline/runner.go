package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/herobook/pkg/assets"
	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/buildinfo"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/observability"
	"github.com/matzehuels/herobook/pkg/pdf"
	"github.com/matzehuels/herobook/pkg/template"
	"github.com/matzehuels/herobook/pkg/text"
)

// Runner renders orders. It holds no per-render state, so one Runner can
// serve concurrent renders with different options.
type Runner struct {
	Resolver assets.Resolver
	Loader   compose.Loader
	Measurer text.Measurer
	Logger   *log.Logger
}

// NewRunner creates a runner over the given asset loader using the built-in
// template catalog and the embedded fonts for measurement.
// If logger is nil, log.Default() is used.
func NewRunner(loader compose.Loader, logger *log.Logger) (*Runner, error) {
	m, err := text.NewFontMetrics()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Resolver: assets.NewTemplateResolver(),
		Loader:   loader,
		Measurer: m,
		Logger:   logger,
	}, nil
}

// Execute runs a complete render: validate, compose every page, build the
// cover and encode both PDFs.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	orderID := ""
	if opts.Request != nil {
		orderID = opts.Request.OrderID
	}
	res, err := r.execute(ctx, &opts)
	if err != nil {
		observability.Render().OnStageComplete(ctx, orderID, string(StageFailed), 0, err)
		r.logger(&opts).Error("render failed", "order", orderID, "err", err)
		return nil, err
	}
	return res, nil
}

func (r *Runner) execute(ctx context.Context, opts *Options) (*Result, error) {
	orderID := ""
	if opts.Request != nil {
		orderID = opts.Request.OrderID
	}
	if err := r.stage(ctx, orderID, StageValidating, opts.ValidateAndSetDefaults); err != nil {
		return nil, err
	}
	logger := r.logger(opts)
	req := opts.Request

	geom, err := req.Spec.Geometry()
	if err != nil {
		return nil, err
	}
	session, err := r.newSession(req, geom, *opts, logger)
	if err != nil {
		return nil, err
	}
	result := &Result{OrderID: req.OrderID, Metadata: metadata(req, opts.GeneratedAt)}

	// Interior pages
	start := time.Now()
	var interior []*compose.Plan
	err = r.stage(ctx, orderID, StageComposing, func() error {
		interior, err = session.composeStory(ctx, opts.Workers)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, s := range []struct {
		stage Stage
		page  string
		build func(assets.PageAssets) compose.Page
	}{
		{StageComposingDedication, assets.PageDedication, session.pages.dedication},
		{StageComposingKeepsake, assets.PageKeepsake, session.pages.keepsake},
	} {
		err = r.stage(ctx, orderID, s.stage, func() error {
			plan, err := session.compose(ctx, s.page, s.build)
			interior = append(interior, plan)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	result.Stats.ComposeTime = time.Since(start)
	logger.Info("composed pages", "order", orderID, "pages", len(interior), "duration", result.Stats.ComposeTime)

	// Cover
	start = time.Now()
	var cover *compose.Plan
	err = r.stage(ctx, orderID, StageBuildingCover, func() error {
		cover, err = session.compose(ctx, assets.PageCover, session.pages.cover)
		if err != nil {
			return err
		}
		if !opts.NoThumbnail {
			result.Thumbnail = Thumbnail(cover, ThumbnailWidth)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Stats.CoverTime = time.Since(start)
	logger.Info("built cover", "order", orderID, "thumbnail", result.Thumbnail != nil, "duration", result.Stats.CoverTime)

	// Encode
	start = time.Now()
	err = r.stage(ctx, orderID, StageFinalized, func() error {
		info := session.info()
		if result.Book, err = encode(geom, info, logger, interior); err != nil {
			return err
		}
		result.Cover, err = encode(geom, info, logger, []*compose.Plan{cover})
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Stats.FinalizeTime = time.Since(start)

	result.Plans = append(interior, cover)
	result.Stats.Pages = len(interior)
	for _, p := range result.Plans {
		result.Stats.Ops += len(p.Ops)
		result.Stats.Skipped += len(p.Skipped)
	}
	logger.Info("finalized book",
		"order", orderID,
		"book_bytes", len(result.Book),
		"cover_bytes", len(result.Cover),
		"skipped", result.Stats.Skipped,
		"duration", result.Stats.FinalizeTime)
	return result, nil
}

// Plan composes every page without building PDFs. Plans come back in
// interior order followed by the cover.
func (r *Runner) Plan(ctx context.Context, opts Options) ([]*compose.Plan, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	req := opts.Request
	geom, err := req.Spec.Geometry()
	if err != nil {
		return nil, err
	}
	session, err := r.newSession(req, geom, opts, r.logger(&opts))
	if err != nil {
		return nil, err
	}

	plans, err := session.composeStory(ctx, opts.Workers)
	if err != nil {
		return nil, err
	}
	for _, p := range []struct {
		page  string
		build func(assets.PageAssets) compose.Page
	}{
		{assets.PageDedication, session.pages.dedication},
		{assets.PageKeepsake, session.pages.keepsake},
		{assets.PageCover, session.pages.cover},
	} {
		plan, err := session.compose(ctx, p.page, p.build)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// stage runs fn between start and completion hooks.
func (r *Runner) stage(ctx context.Context, orderID string, s Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	observability.Render().OnStageStart(ctx, orderID, string(s))
	start := time.Now()
	err := fn()
	observability.Render().OnStageComplete(ctx, orderID, string(s), time.Since(start), err)
	return err
}

// logger prefers the options' logger, then the runner's.
func (r *Runner) logger(opts *Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// session is the request-scoped state of one render.
type session struct {
	req      *book.Request
	fields   template.Fields
	resolver assets.Resolver
	comp     *compose.Compositor
	pages    *pageBuilder
	at       time.Time
}

func (r *Runner) newSession(req *book.Request, geom book.Geometry, opts Options, logger *log.Logger) (*session, error) {
	fields := template.FieldsFor(req)
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	resolver := r.Resolver
	if resolver == nil {
		resolver = assets.NewTemplateResolver()
	}
	return &session{
		req:      req,
		fields:   fields,
		resolver: assets.WithOverrides(resolver, overrides(req)),
		comp: compose.New(geom, r.Loader, r.Measurer,
			compose.WithLogger(logger),
			compose.WithTrimGuides(opts.TrimGuides)),
		pages: &pageBuilder{
			req:      req,
			geom:     geom,
			measurer: r.Measurer,
			textSize: opts.TextSize,
			title:    opts.CoverTitleSize,
		},
		at: opts.GeneratedAt,
	}, nil
}

// composeStory composes the story pages on a bounded pool. Plans are
// returned in manuscript order regardless of completion order.
func (s *session) composeStory(ctx context.Context, workers int) ([]*compose.Plan, error) {
	plans := make([]*compose.Plan, book.StoryPageCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range book.StoryPageCount {
		g.Go(func() error {
			plan, err := s.compose(gctx, book.StoryPageID(i), func(pa assets.PageAssets) compose.Page {
				return s.pages.story(pa, i)
			})
			plans[i] = plan
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

// compose resolves one page's assets and composes it.
func (s *session) compose(ctx context.Context, pageID string, build func(assets.PageAssets) compose.Page) (*compose.Plan, error) {
	pa, err := s.resolver.ResolvePageAssets(pageID, s.fields)
	if err != nil {
		return nil, err
	}
	plan, err := s.comp.Compose(ctx, build(pa))
	if err != nil {
		return nil, fmt.Errorf("compose %s: %w", pageID, err)
	}
	return plan, nil
}

func (s *session) info() pdf.Info {
	req := s.req
	return pdf.Info{
		Title:     req.Manuscript.Title,
		Author:    req.Child.Name,
		Subject:   fmt.Sprintf("A personalized picture book for %s", req.Child.Name),
		Keywords:  fmt.Sprintf("order:%s colorSpace:%s binding:%s", req.OrderID, req.Spec.ColorSpace, req.Spec.Binding),
		Creator:   "herobook " + buildinfo.Version,
		CreatedAt: s.at,
	}
}

// encode builds one PDF from plans.
func encode(geom book.Geometry, info pdf.Info, logger *log.Logger, plans []*compose.Plan) ([]byte, error) {
	doc := pdf.NewDocument(geom, pdf.WithInfo(info), pdf.WithLogger(logger))
	for _, p := range plans {
		if err := doc.AddPage(p); err != nil {
			return nil, err
		}
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentBuild, err, "encode %d pages", len(plans))
	}
	return data, nil
}

// overrides maps request image ids to their URLs.
func overrides(req *book.Request) map[string]string {
	if req.Assets == nil {
		return nil
	}
	m := make(map[string]string, len(req.Assets.Images))
	for _, img := range req.Assets.Images {
		m[img.ID] = img.URL
	}
	return m
}

func metadata(req *book.Request, at time.Time) Metadata {
	return Metadata{
		Title:           req.Manuscript.Title,
		ChildName:       req.Child.Name,
		TotalPages:      book.InteriorPageCount,
		GeneratedAt:     at,
		TemplateVersion: book.TemplateVersion,
		ColorSpace:      req.Spec.ColorSpace,
		Binding:         req.Spec.Binding,
	}
}
