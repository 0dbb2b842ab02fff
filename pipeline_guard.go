package cinescroll

import (
	"fmt"
)

// PipelineTag marks that a post pipeline has been installed into the App.
// The pipeline is built once per App; a second one is a wiring bug.
type PipelineTag struct {
	Name string
}

func ensureSinglePipeline(app *App, name string) {
	if app == nil {
		panic("ensureSinglePipeline: app is nil")
	}
	if tag, ok := Resource[PipelineTag](app); ok {
		app.Logger().Errorf("Multiple post pipelines installed: %s and %s", tag.Name, name)
		panic(fmt.Sprintf("Multiple post pipelines installed: %s and %s", tag.Name, name))
	}
	app.addResources(&PipelineTag{Name: name})
}
