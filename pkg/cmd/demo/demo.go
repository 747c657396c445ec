package demo

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	pkgbgtask "github.com/stleox/gqlspan/pkg/bgtask"
	pkgtracer "github.com/stleox/gqlspan/pkg/tracer"
)

var (
	// selector var
	demoOpts struct {
		olap bool
	}

	// selector flags
	demoFlags = pflag.NewFlagSet("demo", pflag.ContinueOnError)
)

func init() {
	demoFlags.BoolVar(&demoOpts.olap, "olap", false, "Also archive finished spans to the OLAP store")
}

// New creates the demo command. It drives a canned resolution tree through
// the middleware and prints the resulting span tree via the stdout exporter.
func New(vp *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Trace a canned field-resolution tree and print the spans",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDemo(vp)
		},
	}
	cmd.Flags().AddFlagSet(demoFlags)
	return cmd
}

func runDemo(vp *viper.Viper) error {
	if !demoOpts.olap {
		vp = nil
	}
	mw := pkgtracer.New(vp, pkgtracer.Options{})

	shutdown, err := mw.InitStdoutExporter()
	if err != nil {
		return fmt.Errorf("initializing exporter: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logrus.WithError(err).Warn("GqlSpan couldn't shut down exporter")
		}
	}()

	if demoOpts.olap {
		tasks := pkgbgtask.NewBgTaskManager(mw)
		tasks.StartAll()
	}

	ctx := context.Background()
	rt, finishRequest, err := mw.BeginRequest(ctx, &pkgtracer.RequestInfo{OperationName: "demoQuery"})
	if err != nil {
		return err
	}

	resolve := func(field *pkgtracer.FieldInfo) {
		finish := mw.WillResolveField(rt, nil, nil, ctx, field)
		if finish != nil {
			finish(nil, nil)
		}
	}

	// { a { one } as { one two } } with three elements in as
	a := pkgtracer.FieldStep(nil, "a")
	resolve(&pkgtracer.FieldInfo{FieldName: "a", Path: a})
	resolve(&pkgtracer.FieldInfo{FieldName: "one", Path: pkgtracer.FieldStep(a, "one")})

	as := pkgtracer.FieldStep(nil, "as")
	resolve(&pkgtracer.FieldInfo{FieldName: "as", Path: as})
	for i := 0; i < 3; i++ {
		elem := pkgtracer.IndexStep(as, i)
		resolve(&pkgtracer.FieldInfo{FieldName: "one", Path: pkgtracer.FieldStep(elem, "one")})
		resolve(&pkgtracer.FieldInfo{FieldName: "two", Path: pkgtracer.FieldStep(elem, "two")})
	}

	finishRequest()

	mw.Flush()
	mw.Summary()
	return nil
}
