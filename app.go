package cinescroll

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module is the only extension point of an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	shutdown  []func()
	frames    uint64
}

// Exit is always present. Any system may set Requested to stop Run after the
// current frame.
type Exit struct {
	Requested bool
	Reason    string
}

func newApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = nil
	}
	app.addResources(&Exit{})
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Frames counts completed Steps.
func (app *App) Frames() uint64 { return app.frames }

// Step runs every stage once, in order.
func (app *App) Step() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frames++
}

// Run steps until Exit is requested, then runs the shutdown hooks.
func (app *App) Run() {
	log := app.Logger()
	exit := app.exit()
	defer app.Shutdown()

	log.Infof("running %d stages", len(app.stages))
	for !exit.Requested {
		app.Step()
	}
	if exit.Reason != "" {
		log.Infof("exit after %d frames: %s", app.frames, exit.Reason)
	}
}

// Shutdown runs the hooks registered with Commands.OnShutdown in reverse order.
// Calling it again is a no-op.
func (app *App) Shutdown() {
	hooks := app.shutdown
	app.shutdown = nil
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

func (app *App) exit() *Exit {
	exit, _ := Resource[Exit](app)
	return exit
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType == nil || resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %v must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource looks up the resource of type *T.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

// ensureResource returns the existing *T or installs the one built by mk.
func ensureResource[T any](app *App, mk func() *T) *T {
	if r, ok := Resource[T](app); ok {
		return r
	}
	r := mk()
	app.addResources(r)
	return r
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}
