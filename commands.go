package cinescroll

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// OnShutdown registers fn to run when the App shuts down. Hooks run in reverse
// registration order.
func (cmd *Commands) OnShutdown(fn func()) *Commands {
	cmd.app.shutdown = append(cmd.app.shutdown, fn)
	return cmd
}

// Exit asks Run to stop after the current frame.
func (cmd *Commands) Exit(reason string) {
	exit := cmd.app.exit()
	exit.Requested = true
	exit.Reason = reason
}
