package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers every row of the tool surface.
func (s *Server) registerTools() {
	s.registerLaunch()
	s.registerAttach()
	s.registerLaunchWatch()
	s.registerStopWatch()
	s.registerRestart()

	s.registerSetBreakpoint()
	s.registerRemoveBreakpoint()
	s.registerListBreakpoints()

	s.registerContinue()
	s.registerPause()
	s.registerStepOver()
	s.registerStepInto()
	s.registerStepOut()

	s.registerStackTrace()
	s.registerScopes()
	s.registerVariables()
	s.registerEvaluate()
	s.registerThreads()
	s.registerOutput()
	s.registerStatus()
	s.registerTerminate()

	s.registerListSessions()
	s.registerSelectSession()
	s.registerTerminateSession()

	s.registerInvoke()
}

func sessionIDOpt() mcp.ToolOption {
	return mcp.WithString("sessionId",
		mcp.Description("Session to target. Omit to use the manager's default session."),
	)
}

func (s *Server) registerLaunch() {
	tool := mcp.NewTool("launch",
		mcp.WithDescription("Create a session, launch a .NET program under netcoredbg, and wait for the debugger to attach. Returns capabilities and the resolved environment."),
		mcp.WithString("program", mcp.Required(), mcp.Description("Path to the compiled assembly or project entry point")),
		mcp.WithString("args", mcp.Description("JSON array of program arguments, e.g. [\"--flag\", \"value\"]")),
		mcp.WithString("cwd", mcp.Description("Working directory for the launched process")),
		mcp.WithBoolean("stopAtEntry", mcp.Description("Stop at the program's entry point (default: false)")),
		mcp.WithString("env", mcp.Description("JSON object of explicit environment variables, overriding launch-profile values")),
		mcp.WithString("launchProfile", mcp.Description("Named profile from Properties/launchSettings.json to resolve environment from")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleLaunch)
}

func (s *Server) registerAttach() {
	tool := mcp.NewTool("attach",
		mcp.WithDescription("Create a session and attach netcoredbg to an already-running process."),
		mcp.WithNumber("processId", mcp.Required(), mcp.Description("PID of the process to attach to")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleAttach)
}

func (s *Server) registerLaunchWatch() {
	tool := mcp.NewTool("launch_watch",
		mcp.WithDescription("Create a session, start 'dotnet watch run' for the project, and attach to the first debuggee it spawns. The session will transparently reattach across hot-reload rebuilds."),
		mcp.WithString("projectPath", mcp.Required(), mcp.Description("Path to the .csproj or its containing directory")),
		mcp.WithString("launchProfile", mcp.Description("Named launch profile to pass to 'dotnet watch run --launch-profile'")),
		mcp.WithString("args", mcp.Description("JSON array of passthrough arguments after '--'")),
		mcp.WithBoolean("noHotReload", mcp.Description("Pass --no-hot-reload to 'dotnet watch' (default: false)")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleLaunchWatch)
}

func (s *Server) registerStopWatch() {
	tool := mcp.NewTool("stop_watch",
		mcp.WithDescription("Terminate the rebuild driver and the attached debugger for a watch-mode session."),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleStopWatch)
}

func (s *Server) registerRestart() {
	tool := mcp.NewTool("restart",
		mcp.WithDescription("Relaunch a launch-mode session from its saved configuration, optionally rebuilding first."),
		mcp.WithBoolean("rebuild", mcp.Description("Run 'dotnet build' before relaunching (default: false)")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleRestart)
}

func (s *Server) registerSetBreakpoint() {
	tool := mcp.NewTool("set_breakpoint",
		mcp.WithDescription("Set (or replace) a breakpoint at file:line, optionally conditional. Reports whether the debugger verified it."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Source file path")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Line number")),
		mcp.WithString("condition", mcp.Description("Conditional expression; the breakpoint only fires when it evaluates truthy")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleSetBreakpoint)
}

func (s *Server) registerRemoveBreakpoint() {
	tool := mcp.NewTool("remove_breakpoint",
		mcp.WithDescription("Remove a previously set breakpoint at file:line."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Source file path")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Line number")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleRemoveBreakpoint)
}

func (s *Server) registerListBreakpoints() {
	tool := mcp.NewTool("list_breakpoints",
		mcp.WithDescription("List every breakpoint currently tracked by the session, across all files."),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleListBreakpoints)
}

func (s *Server) registerContinue() {
	tool := mcp.NewTool("continue",
		mcp.WithDescription("Resume execution on a thread. Returns immediately; use status or output to observe the next stop."),
		mcp.WithNumber("threadId", mcp.Description("Thread to resume; defaults to the last stopped thread, or 1")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleContinue)
}

func (s *Server) registerPause() {
	tool := mcp.NewTool("pause",
		mcp.WithDescription("Suspend a running thread."),
		mcp.WithNumber("threadId", mcp.Description("Thread to pause; defaults to the last stopped thread, or 1")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handlePause)
}

func (s *Server) registerStepOver() {
	tool := mcp.NewTool("step_over",
		mcp.WithDescription("Step to the next line in the current frame."),
		mcp.WithNumber("threadId", mcp.Description("Thread to step; defaults to the last stopped thread, or 1")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleStepOver)
}

func (s *Server) registerStepInto() {
	tool := mcp.NewTool("step_into",
		mcp.WithDescription("Step into a call on the current line."),
		mcp.WithNumber("threadId", mcp.Description("Thread to step; defaults to the last stopped thread, or 1")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleStepInto)
}

func (s *Server) registerStepOut() {
	tool := mcp.NewTool("step_out",
		mcp.WithDescription("Step out of the current function."),
		mcp.WithNumber("threadId", mcp.Description("Thread to step; defaults to the last stopped thread, or 1")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleStepOut)
}

func (s *Server) registerStackTrace() {
	tool := mcp.NewTool("stack_trace",
		mcp.WithDescription("Return up to depth stack frames for a thread."),
		mcp.WithNumber("threadId", mcp.Description("Thread to inspect; defaults to the last stopped thread, or 1")),
		mcp.WithNumber("depth", mcp.Description("Maximum frames to return (default: 20)")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleStackTrace)
}

func (s *Server) registerScopes() {
	tool := mcp.NewTool("scopes",
		mcp.WithDescription("Return the variable scopes visible at a stack frame."),
		mcp.WithNumber("frameId", mcp.Required(), mcp.Description("Stack frame id from stack_trace")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleScopes)
}

func (s *Server) registerVariables() {
	tool := mcp.NewTool("variables",
		mcp.WithDescription("Return the children of a variables reference (a scope or a complex variable)."),
		mcp.WithNumber("variablesReference", mcp.Required(), mcp.Description("Reference from scopes or a prior variables call")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleVariables)
}

func (s *Server) registerEvaluate() {
	tool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an expression in the debuggee's REPL context."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression to evaluate")),
		mcp.WithNumber("frameId", mcp.Description("Stack frame to evaluate in (default: global scope)")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleEvaluate)
}

func (s *Server) registerThreads() {
	tool := mcp.NewTool("threads",
		mcp.WithDescription("List all threads in the debuggee."),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleThreads)
}

func (s *Server) registerOutput() {
	tool := mcp.NewTool("output",
		mcp.WithDescription("Return the last N lines of the session's captured output, newest last."),
		mcp.WithNumber("lines", mcp.Description("Number of lines to return (default: 20)")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleOutput)
}

func (s *Server) registerStatus() {
	tool := mcp.NewTool("status",
		mcp.WithDescription("Report the session's derived state: running, stopped, reconnecting, or terminated, with stop reason and uptime where applicable."),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleStatus)
}

func (s *Server) registerTerminate() {
	tool := mcp.NewTool("terminate",
		mcp.WithDescription("Destroy a session: kill the debugger, and in watch mode, the rebuild driver."),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleTerminate)
}

func (s *Server) registerListSessions() {
	tool := mcp.NewTool("list_sessions",
		mcp.WithDescription("List every session the manager tracks, with program, mode, state, and which one is the default."),
	)
	s.mcpServer.AddTool(tool, s.handleListSessions)
}

func (s *Server) registerSelectSession() {
	tool := mcp.NewTool("select_session",
		mcp.WithDescription("Make a session the manager's default, used by every tool that omits sessionId."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session to make the default")),
	)
	s.mcpServer.AddTool(tool, s.handleSelectSession)
}

func (s *Server) registerTerminateSession() {
	tool := mcp.NewTool("terminate_session",
		mcp.WithDescription("Terminate a session by id and remove it from the manager, promoting a replacement default if it was the default."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session to terminate")),
	)
	s.mcpServer.AddTool(tool, s.handleTerminateSession)
}

func (s *Server) registerInvoke() {
	tool := mcp.NewTool("invoke",
		mcp.WithDescription("Run the reflection harness against a method. Without debug, runs to completion and returns its output. With debug, launches the harness as an ordinary session so it can be stepped through."),
		mcp.WithString("assembly", mcp.Required(), mcp.Description("Path to the assembly containing the type")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Fully-qualified type name")),
		mcp.WithString("method", mcp.Required(), mcp.Description("Method name to invoke")),
		mcp.WithString("args", mcp.Description("JSON array of method arguments")),
		mcp.WithString("ctorArgs", mcp.Description("JSON array of constructor arguments, for instance methods")),
		mcp.WithBoolean("debug", mcp.Description("Launch the harness as a debuggable session instead of running it to completion (default: false)")),
		mcp.WithString("cwd", mcp.Description("Working directory for the harness process")),
		sessionIDOpt(),
	)
	s.mcpServer.AddTool(tool, s.handleInvoke)
}
