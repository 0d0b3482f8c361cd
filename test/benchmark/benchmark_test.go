package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/htmltext"
	"github.com/content-ideas-api/internal/mocks"
	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/repository"
	"github.com/content-ideas-api/internal/service"
	"github.com/content-ideas-api/internal/validation"
)

const benchUser = "bench@example.com"

func newServices(b *testing.B) *service.Services {
	b.Helper()
	repos := repository.New(mocks.NewMockIdeaRepository(), mocks.NewMockCounterRepository())
	return service.NewServices(repos, config.Default(), zerolog.Nop())
}

func payloads(n int) []models.IdeaPayload {
	out := make([]models.IdeaPayload, n)
	for i := range out {
		out[i] = models.IdeaPayload{
			Keyword:           fmt.Sprintf("palabra clave %04d", i),
			Title:             fmt.Sprintf("Idea %d", i),
			Keywords:          []string{"café", "molienda", "extracción"},
			SuggestedHeadings: []string{"Qué es", "Cómo se prepara"},
		}
	}
	return out
}

// BenchmarkMerge benchmarks merging a batch into an existing collection
func BenchmarkMerge(b *testing.B) {
	svcs := newServices(b)
	ctx := context.Background()
	batch := payloads(500)
	if _, err := svcs.Ideas.Merge(ctx, benchUser, batch); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svcs.Ideas.Merge(ctx, benchUser, batch); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(len(batch)*b.N)/b.Elapsed().Seconds(), "ideas/sec")
}

// BenchmarkAppendArticle benchmarks appending versions to one idea
func BenchmarkAppendArticle(b *testing.B) {
	svcs := newServices(b)
	ctx := context.Background()
	html := "<h1>Guía de la prensa francesa</h1>" + strings.Repeat("<p>Molienda gruesa y cuatro minutos.</p>", 20)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svcs.Articles.Append(ctx, benchUser, "prensa francesa", html, ""); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkValidation benchmarks payload validation
func BenchmarkValidation(b *testing.B) {
	batch := payloads(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		v := validation.NewValidator()
		for j := range batch {
			v.ValidateIdeaPayload(&batch[j], j+1)
		}
	}

	b.ReportMetric(float64(len(batch)*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkPreview benchmarks title and preview derivation
func BenchmarkPreview(b *testing.B) {
	html := "<h2>Métodos de filtrado</h2>" + strings.Repeat("<p>El <strong>V60</strong> resalta la acidez.</p>", 50)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		htmltext.Title(html)
		htmltext.Preview(html)
	}
}

// BenchmarkExportNDJSON benchmarks streaming a collection
func BenchmarkExportNDJSON(b *testing.B) {
	svcs := newServices(b)
	ctx := context.Background()
	if _, err := svcs.Ideas.Merge(ctx, benchUser, payloads(1000)); err != nil {
		b.Fatal(err)
	}

	var buf bytes.Buffer
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		buf.Reset()
		if _, err := svcs.Export.Export(ctx, &buf, benchUser, service.FormatNDJSON); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkRecalibrateAll benchmarks parallel recalibration across users
func BenchmarkRecalibrateAll(b *testing.B) {
	svcs := newServices(b)
	ctx := context.Background()
	for u := 0; u < 50; u++ {
		if _, err := svcs.Ideas.Merge(ctx, fmt.Sprintf("user%02d@example.com", u), payloads(20)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svcs.Counters.RecalibrateAll(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
