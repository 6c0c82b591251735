package mcp

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/viant/bucketfs/service"
	"github.com/viant/bucketfs/store"
)

// wrapFailure prefixes errors with their classification so agents can react
// to the failure kind without parsing free text.
func wrapFailure(err error) error {
	return fmt.Errorf("%s: %s", store.Classify(err), err.Error())
}

func (h *Handler) read(ctx context.Context, in *ReadInput) (*ReadOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &ReadInput{}
	}
	out, err := h.service.Read(ctx, service.ReadRequest{
		URI:    in.URI,
		Path:   in.Path,
		Offset: in.Offset,
		Length: in.Length,
	})
	if err != nil {
		return nil, wrapFailure(err)
	}
	if h.metricsLog {
		log.Printf("mcp metric op=read uri=%s bytes=%d cache_hit=%t dur=%s", out.URI, len(out.Content), out.FromCache, time.Since(start))
	}
	return &ReadOutput{URI: out.URI, Content: string(out.Content), FromCache: out.FromCache}, nil
}

func (h *Handler) list(ctx context.Context, in *ListInput) (*ListOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &ListInput{}
	}
	out, err := h.service.List(ctx, service.ListRequest{Path: in.Path})
	if err != nil {
		return nil, wrapFailure(err)
	}
	if h.metricsLog {
		log.Printf("mcp metric op=list path=%s entries=%d dur=%s", in.Path, len(out.Entries), time.Since(start))
	}
	return &ListOutput{Path: out.Path, Entries: out.Entries}, nil
}

func (h *Handler) findFiles(ctx context.Context, in *FindInput) (*FindOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &FindInput{}
	}
	out, err := h.service.Find(ctx, service.FindRequest{
		Glob:   in.Glob,
		Path:   in.Path,
		Offset: in.Offset,
		Limit:  in.Limit,
	})
	if err != nil {
		return nil, wrapFailure(err)
	}
	if h.metricsLog {
		log.Printf("mcp metric op=findFiles glob=%s matches=%d dur=%s", in.Glob, len(out.URIs), time.Since(start))
	}
	return &FindOutput{URIs: out.URIs}, nil
}

func (h *Handler) filterFiles(ctx context.Context, in *FilterInput) (*FilterOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &FilterInput{}
	}
	req := service.FilterRequest{
		MinSize:      in.MinSize,
		MaxSize:      in.MaxSize,
		StorageClass: in.StorageClass,
		KeyRegexp:    in.KeyRegexp,
		Offset:       in.Offset,
		Limit:        in.Limit,
	}
	if in.ModifiedAfter != "" {
		after, err := time.Parse(time.RFC3339, in.ModifiedAfter)
		if err != nil {
			return nil, fmt.Errorf("mcp: modifiedAfter: %v", err)
		}
		req.ModifiedAfter = &after
	}
	if in.ModifiedBefore != "" {
		before, err := time.Parse(time.RFC3339, in.ModifiedBefore)
		if err != nil {
			return nil, fmt.Errorf("mcp: modifiedBefore: %v", err)
		}
		req.ModifiedBefore = &before
	}
	out, err := h.service.Filter(ctx, req)
	if err != nil {
		return nil, wrapFailure(err)
	}
	files := make([]FilterEntry, 0, len(out.Files))
	for _, object := range out.Files {
		files = append(files, filterEntry(object))
	}
	if h.metricsLog {
		log.Printf("mcp metric op=filterFiles matches=%d dur=%s", len(files), time.Since(start))
	}
	return &FilterOutput{Files: files}, nil
}

func (h *Handler) grepFiles(ctx context.Context, in *GrepInput) (*GrepOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &GrepInput{}
	}
	out, err := h.service.Grep(ctx, service.GrepRequest{
		Pattern:       in.Pattern,
		CaseSensitive: in.CaseSensitive,
		Path:          in.Path,
		Glob:          in.Glob,
		MaxResults:    in.MaxResults,
	})
	if err != nil {
		return nil, wrapFailure(err)
	}
	if h.metricsLog {
		log.Printf("mcp metric op=grepFiles outcome=%s matches=%d truncated=%t dur=%s", out.Outcome, len(out.Lines), out.Truncated, time.Since(start))
	}
	return &GrepOutput{Outcome: string(out.Outcome), Lines: out.Lines, Truncated: out.Truncated}, nil
}

func (h *Handler) cacheOp(ctx context.Context, in *CacheInput) (*CacheOutput, error) {
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &CacheInput{}
	}
	switch in.Action {
	case "", "stats":
	case "clear":
		if err := h.service.ClearCache(ctx); err != nil {
			return nil, wrapFailure(err)
		}
	case "warm":
		if in.Glob == "" {
			return nil, fmt.Errorf("mcp: warm requires a glob")
		}
		task := h.service.Warm(ctx, service.WarmRequest{Glob: in.Glob, Path: in.Path})
		result, err := task.Wait(ctx)
		if err != nil {
			return nil, wrapFailure(err)
		}
		warm := result.(*service.WarmResult)
		stats := h.service.CacheStats()
		return &CacheOutput{
			Entries:            stats.Entries,
			ResidentBytes:      stats.ResidentBytes,
			CapacityBytes:      stats.CapacityBytes,
			UtilizationPercent: stats.UtilizationPercent,
			Warmed:             warm.Cached,
			Failed:             warm.Failed,
		}, nil
	default:
		return nil, fmt.Errorf("mcp: unsupported cache action %q", in.Action)
	}
	stats := h.service.CacheStats()
	return &CacheOutput{
		Entries:            stats.Entries,
		ResidentBytes:      stats.ResidentBytes,
		CapacityBytes:      stats.CapacityBytes,
		UtilizationPercent: stats.UtilizationPercent,
	}, nil
}
