package wiring

import (
	"context"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"triage/internal/builder"
	"triage/internal/config"
	"triage/internal/evidence"
	"triage/internal/intake"
	"triage/internal/metrics"
	"triage/internal/store"
)

func testConfig(workspacePath string) config.Config {
	th := builder.DefaultThresholds()
	th.Workers = 2
	return config.Config{Workspace: workspacePath, Thresholds: th}
}

var _ = ginkgo.Describe("Analyze", func() {
	var (
		ctx context.Context
		st  store.Store
		src intake.Source
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		st = store.NewMemStore()
		src = intake.FileSource{Dir: filepath.Join("..", "intake", "testdata")}
	})

	ginkgo.Context("without a workspace", func() {
		ginkgo.It("classifies every failure and stores the run", func() {
			b, err := NewBuilder(testConfig(""), metrics.Nop{})
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(b.Comparator).To(gomega.BeNil())

			run, err := Analyze(ctx, b, src, "nightly.yaml", "", "", st)
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(run.ID).To(gomega.Equal("nightly-2026-03-02"))
			gomega.Expect(run.Records).To(gomega.HaveLen(3))
			gomega.Expect(run.Records[2].ID).To(gomega.Equal("3"))
			gomega.Expect(run.Records[0].TimelineStatus).To(gomega.Equal(evidence.TimelineNotConfigured))

			stored, err := st.GetRun(run.ID)
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(stored.Summary.Total).To(gomega.Equal(3))
		})

		ginkgo.It("does not store a dry run", func() {
			b, err := NewBuilder(testConfig(""), nil)
			gomega.Expect(err).To(gomega.Succeed())

			run, err := Analyze(ctx, b, src, "single.json", "adhoc", "", nil)
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(run.ID).To(gomega.Equal("adhoc"))

			runs, err := st.ListRuns(0)
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(runs).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("with a recorded-history workspace", func() {
		ginkgo.It("lets the change history decide the locator failure", func() {
			b, err := NewBuilder(testConfig(filepath.Join("..", "history", "testdata", "workspace.yaml")), metrics.Nop{})
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(b.Comparator).NotTo(gomega.BeNil())

			run, err := Analyze(ctx, b, src, "nightly.yaml", "", "", st)
			gomega.Expect(err).To(gomega.Succeed())

			rec := run.Records[0]
			gomega.Expect(rec.ID).To(gomega.Equal("save-cluster"))
			gomega.Expect(rec.TimelineStatus).To(gomega.Equal(evidence.TimelinePreempted))
			gomega.Expect(rec.Classification.Path).To(gomega.Equal(evidence.PathTimelineOverride))
			gomega.Expect(rec.Timeline.ReasonCode).To(gomega.Equal(evidence.ReasonNeverExisted))
			gomega.Expect(rec.FinalCategory).To(gomega.Equal(evidence.CategoryAutomation))
			gomega.Expect(run.Summary.TimelineOverrides).To(gomega.Equal(1))
		})
	})

	ginkgo.It("rejects a missing bundle", func() {
		b, err := NewBuilder(testConfig(""), nil)
		gomega.Expect(err).To(gomega.Succeed())
		_, err = Analyze(ctx, b, src, "missing.yaml", "", "", st)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("rejects a bundle that fails the schema", func() {
		b, err := NewBuilder(testConfig(""), nil)
		gomega.Expect(err).To(gomega.Succeed())
		bad := intake.StaticSource{Bundle: &intake.Bundle{RunID: "empty"}}
		_, err = Analyze(ctx, b, bad, "inline", "", "", st)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("schema validation")))
	})
})

var _ = ginkgo.Describe("Override", func() {
	var st store.Store

	ginkgo.BeforeEach(func() {
		st = store.NewMemStore()
		b, err := NewBuilder(testConfig(""), nil)
		gomega.Expect(err).To(gomega.Succeed())
		src := intake.FileSource{Dir: filepath.Join("..", "intake", "testdata")}
		_, err = Analyze(context.Background(), b, src, "nightly.yaml", "", "", st)
		gomega.Expect(err).To(gomega.Succeed())
	})

	ginkgo.It("keeps the record and stores the override beside it", func() {
		o, err := Override(st, "nightly-2026-03-02", "list-api", "infrastructure", "backend outage during the run")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(o.ID).To(gomega.BeNumerically(">", 0))

		rec, err := st.GetRecord("nightly-2026-03-02", "list-api")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(rec.FinalCategory).NotTo(gomega.Equal(evidence.CategoryInfrastructure))

		overrides, err := st.ListOverrides("nightly-2026-03-02")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(overrides).To(gomega.HaveLen(1))
	})

	ginkgo.DescribeTable("rejects bad overrides",
		func(recordID, category, reason string) {
			_, err := Override(st, "nightly-2026-03-02", recordID, category, reason)
			gomega.Expect(err).To(gomega.HaveOccurred())
		},
		ginkgo.Entry("unknown category", "list-api", "cosmic_rays", "why"),
		ginkgo.Entry("no reason", "list-api", "product", ""),
		ginkgo.Entry("unknown record", "nope", "product", "why"),
	)
})
