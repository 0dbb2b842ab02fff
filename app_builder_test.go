package cinescroll

import "testing"

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type orderModule struct {
	name string
	log  *[]string
}

func (m orderModule) Install(app *App, commands *Commands) {
	*m.log = append(*m.log, m.name)
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
}

func TestAppBuilder_Build_WithModules(t *testing.T) {
	builder := NewAppBuilder()
	module := &MockModule{}
	builder.UseModule(module)

	builder.Build()

	if !module.installed {
		t.Errorf("Expected Install to be called on the module, but it was not")
	}
}

func TestAppBuilder_Build_InstallsInOrder(t *testing.T) {
	var log []string
	NewAppBuilder().
		UseModule(orderModule{"a", &log}, orderModule{"b", &log}).
		UseModule(orderModule{"c", &log}).
		Build()

	if len(log) != 3 || log[0] != "a" || log[1] != "b" || log[2] != "c" {
		t.Errorf("Expected install order [a b c], got %v", log)
	}
}

func TestAppBuilder_ProvidesExit(t *testing.T) {
	app := NewAppBuilder().Build()
	if _, ok := Resource[Exit](app); !ok {
		t.Errorf("Expected an Exit resource")
	}
}
