// Copyright © 2024 The ELPS authors

// Package analysis drives a hook analysis run. A Session owns the hook
// registry of one run: it loads the corpus once, merges the hooks declared
// in each source file, and checks the hook API call sites of each file
// with the contract provider.
//
// A Session is single-threaded. Callers analyzing files concurrently must
// use one Session per goroutine or serialize access.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/astutil"
	"github.com/luthersystems/wphooks/contract"
	"github.com/luthersystems/wphooks/corpus"
	"github.com/luthersystems/wphooks/diagnostic"
	"github.com/luthersystems/wphooks/dynname"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/learned"
	"github.com/luthersystems/wphooks/logger"
	"github.com/luthersystems/wphooks/scanner"
	"github.com/luthersystems/wphooks/semtype"
)

// Session is one analysis run.
type Session struct {
	ID       uuid.UUID
	Config   Config
	Registry *hooks.Registry
	Loader   *corpus.Loader
	Resolver *dynname.Resolver
	Scanner  *scanner.Scanner
	Provider *contract.Provider
	Oracle   *LiteralOracle

	// Issues collects the issues reported by the provider, minus the
	// suppressed kinds.
	Issues *diagnostic.Collector

	// Learned is nil unless a learned-signature log is configured.
	Learned *learned.Log
}

// NewSession returns a session with an empty registry.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	issues, err := diagnostic.NewCollector(cfg.Suppress...)
	if err != nil {
		return nil, err
	}
	registry := hooks.NewRegistry()
	resolver, err := dynname.NewResolver(registry, cfg.DynamicChars)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.New(),
		Config:   cfg,
		Registry: registry,
		Loader:   corpus.NewLoader(registry),
		Resolver: resolver,
		Scanner:  scanner.New(cfg.SchedulerFunctions),
		Oracle:   NewLiteralOracle(cfg.Constants),
		Issues:   issues,
	}
	s.Provider = &contract.Provider{
		Registry:         registry,
		Resolver:         resolver,
		Oracle:           s.Oracle,
		Sink:             issues,
		Errors:           s.Loader,
		RequireAllParams: cfg.RequireAllParams,
		IgnoreUnknown:    !cfg.ReportsUnknownHooks(),
	}
	if cfg.LearnedLog != "" {
		s.Learned = &learned.Log{Path: cfg.LearnedLog}
		s.Provider.OnInfer = s.Learned.Recorder()
	}
	return s, nil
}

// LoadCorpus fills the registry from the bundled corpus, the configured
// sources and the learned-signature log. It does nothing once the
// registry holds any hook, so it is safe to call from every entry point.
func (s *Session) LoadCorpus(ctx context.Context) (err error) {
	if s.Registry.Len() > 0 {
		return nil
	}
	ctx, span := s.startSpan(ctx, "wphooks.LoadCorpus")
	defer func() { endSpan(span, err) }()

	files, err := corpus.Discover(s.Config.Hooks)
	if err != nil {
		return err
	}
	if s.Config.UseDefaultHooks {
		s.Loader.LoadDefault()
	}
	for _, f := range files {
		s.Loader.LoadFile(f)
	}
	if s.Learned != nil {
		if _, err := s.Learned.Load(s.Registry); err != nil {
			return err
		}
	}
	span.SetAttributes(attrCorpusFile.Int(len(files)), attrHookCount.Int(s.Registry.Len()))
	logger.DebugContext(ctx, "loaded hook corpus",
		"run", s.ID.String(), "files", len(files), "hooks", s.Registry.Len())
	return nil
}

// ScanFile merges the hooks declared in f into the registry and returns
// how many declarations were found. A file whose scan aborts keeps the
// declarations found before the failure; the failure is logged.
func (s *Session) ScanFile(ctx context.Context, f *ast.File) int {
	ctx, span := s.startSpan(ctx, "wphooks.ScanFile", fileAttr(f.Path))
	found, err := s.Scanner.Scan(f)
	for _, h := range found {
		s.Registry.Register(h.Name, h.Kind, h.Types, h.Deprecated)
	}
	if err != nil {
		logger.WarnContext(ctx, "file could not be fully scanned for hooks",
			"file", f.Path, "found", len(found), "error", err)
	}
	span.SetAttributes(attrFound.Int(len(found)))
	endSpan(span, err)
	return len(found)
}

// Site is a checked hook API call.
type Site struct {
	Call contract.Call

	// Contract is nil when the call is left to the host's own signature.
	Contract *contract.Contract

	// Return is the type of the call expression, nil when not determined.
	Return *semtype.Union

	// Err is set when the call could not be checked.
	Err error
}

// CheckFile checks every hook API call of f against the registry, in
// source order, learning from undocumented declarations as it goes.
// Issues go to s.Issues. The returned sites include every call whose
// contract or type was determined, and every call that failed.
func (s *Session) CheckFile(ctx context.Context, f *ast.File) []Site {
	ctx, span := s.startSpan(ctx, "wphooks.CheckFile", fileAttr(f.Path))
	defer span.End()

	s.Oracle.Bind(f)
	var sites []Site
	astutil.WalkCalls(f.Nodes, func(n *ast.Node, _ int) {
		c, ok := contract.NewCall(f.Path, n)
		if !ok {
			return
		}
		site := Site{Call: c}
		if contract.Claims(c.Function) {
			site.Contract, site.Err = s.Provider.Params(c)
			if site.Err == nil {
				site.Return, _, site.Err = s.Provider.ReturnType(c)
			}
		}
		if site.Err == nil {
			site.Err = s.Provider.AfterCall(c)
		}
		if site.Err != nil {
			var unsupported *dynname.UnsupportedError
			if !errors.As(site.Err, &unsupported) {
				site.Err = fmt.Errorf("%s:%d: %w", f.Path, astutil.LineOf(n), site.Err)
			}
			span.RecordError(site.Err)
			logger.WarnContext(ctx, "hook call could not be checked", "file", f.Path, "error", site.Err)
		}
		if site.Contract != nil || site.Return != nil || site.Err != nil {
			sites = append(sites, site)
		}
	})
	return sites
}

// Analyze loads the corpus, scans every file for declarations and then
// checks every file. Scanning all files first makes the checks
// independent of file order.
func (s *Session) Analyze(ctx context.Context, files []*ast.File) ([]Site, error) {
	if err := s.LoadCorpus(ctx); err != nil {
		return nil, err
	}
	for _, f := range files {
		s.ScanFile(ctx, f)
	}
	var sites []Site
	for _, f := range files {
		sites = append(sites, s.CheckFile(ctx, f)...)
	}
	return sites, nil
}
