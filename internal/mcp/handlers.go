package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
	"github.com/netdap/netdap-mcp/internal/harness"
	"github.com/netdap/netdap-mcp/internal/session"
	"github.com/netdap/netdap-mcp/pkg/types"
)

// resolveSession resolves the optional sessionId argument against the
// manager, falling back to its default session.
func (s *Server) resolveSession(request mcp.CallToolRequest) (*session.Session, error) {
	sessionID, _ := request.RequireString("sessionId")
	return s.manager.GetSession(sessionID)
}

func errResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(netdaperrors.FromError(err).Error()), nil
}

func textResult(format string, a ...interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf(format, a...)), nil
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func parseStringArray(request mcp.CallToolRequest, param string) ([]string, error) {
	raw, _ := request.RequireString(param)
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, netdaperrors.InvalidJSON(param, err, `["a", "b"]`)
	}
	return out, nil
}

func parseStringMap(request mcp.CallToolRequest, param string) (map[string]string, error) {
	raw, _ := request.RequireString(param)
	if raw == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, netdaperrors.InvalidJSON(param, err, `{"KEY": "value"}`)
	}
	return out, nil
}

// Session lifecycle

func (s *Server) handleLaunch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	program, err := request.RequireString("program")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("program", "Path to the compiled assembly or project entry point."))
	}

	args, err := parseStringArray(request, "args")
	if err != nil {
		return errResult(err)
	}
	env, err := parseStringMap(request, "env")
	if err != nil {
		return errResult(err)
	}
	cwd, _ := request.RequireString("cwd")
	launchProfile, _ := request.RequireString("launchProfile")
	stopAtEntry := request.GetBool("stopAtEntry", false)
	explicitID, _ := request.RequireString("sessionId")

	sess, err := s.manager.CreateSession(explicitID, filepath.Base(program))
	if err != nil {
		return errResult(err)
	}

	caps, err := sess.Launch(ctx, types.SessionConfig{
		Program:       program,
		Args:          args,
		Cwd:           cwd,
		StopAtEntry:   stopAtEntry,
		LaunchProfile: launchProfile,
		ExplicitEnv:   env,
	})
	if err != nil {
		_ = s.manager.TerminateSession(sess.ID())
		return errResult(err)
	}

	return jsonResult(map[string]interface{}{
		"sessionId":    sess.ID(),
		"status":       "launched",
		"capabilities": caps.Capabilities,
		"resolvedEnv":  caps.ResolvedEnv,
	})
}

func (s *Server) handleAttach(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pid, err := request.RequireFloat("processId")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("processId", "PID of the running process to attach to."))
	}
	explicitID, _ := request.RequireString("sessionId")

	sess, err := s.manager.CreateSession(explicitID, "")
	if err != nil {
		return errResult(err)
	}

	caps, err := sess.Attach(ctx, int(pid))
	if err != nil {
		_ = s.manager.TerminateSession(sess.ID())
		return errResult(err)
	}

	return jsonResult(map[string]interface{}{
		"sessionId":    sess.ID(),
		"status":       "attached",
		"capabilities": caps.Capabilities,
	})
}

func (s *Server) handleLaunchWatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, err := request.RequireString("projectPath")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("projectPath", "Path to the .csproj or its containing directory."))
	}

	args, err := parseStringArray(request, "args")
	if err != nil {
		return errResult(err)
	}
	launchProfile, _ := request.RequireString("launchProfile")
	noHotReload := request.GetBool("noHotReload", false)
	explicitID, _ := request.RequireString("sessionId")

	sess, err := s.manager.CreateSession(explicitID, filepath.Base(projectPath))
	if err != nil {
		return errResult(err)
	}

	pid, err := sess.StartWatch(ctx, projectPath, launchProfile, args, noHotReload)
	if err != nil {
		_ = s.manager.TerminateSession(sess.ID())
		return errResult(err)
	}

	return jsonResult(map[string]interface{}{
		"sessionId": sess.ID(),
		"status":    "watching",
		"pid":       pid,
	})
}

func (s *Server) handleStopWatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	if err := sess.StopWatch(); err != nil {
		return errResult(err)
	}
	return textResult("watch stopped for session %s", sess.ID())
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	rebuild := request.GetBool("rebuild", false)

	caps, err := sess.Restart(ctx, rebuild)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]interface{}{
		"sessionId":    sess.ID(),
		"status":       "relaunched",
		"capabilities": caps.Capabilities,
		"resolvedEnv":  caps.ResolvedEnv,
	})
}

// Breakpoints

func (s *Server) handleSetBreakpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	file, err := request.RequireString("file")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("file", "Source file path."))
	}
	line, err := request.RequireFloat("line")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("line", "Line number."))
	}
	condition, _ := request.RequireString("condition")

	info, err := sess.SetBreakpoint(file, int(line), condition)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(info)
}

func (s *Server) handleRemoveBreakpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	file, err := request.RequireString("file")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("file", "Source file path."))
	}
	line, err := request.RequireFloat("line")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("line", "Line number."))
	}

	if err := sess.RemoveBreakpoint(file, int(line)); err != nil {
		return errResult(err)
	}
	return textResult("removed breakpoint at %s:%d", file, int(line))
}

func (s *Server) handleListBreakpoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]interface{}{
		"breakpoints": sess.ListBreakpoints(),
	})
}

// Execution control

func (s *Server) threadIDArg(request mcp.CallToolRequest) int {
	tid, err := request.RequireFloat("threadId")
	if err != nil {
		return 0
	}
	return int(tid)
}

func (s *Server) handleContinue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	if err := sess.Continue(s.threadIDArg(request)); err != nil {
		return errResult(err)
	}
	return textResult("continuing")
}

func (s *Server) handlePause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	if err := sess.Pause(s.threadIDArg(request)); err != nil {
		return errResult(err)
	}
	return textResult("paused")
}

func (s *Server) handleStepOver(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	if err := sess.StepOver(s.threadIDArg(request)); err != nil {
		return errResult(err)
	}
	return textResult("stepped over")
}

func (s *Server) handleStepInto(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	if err := sess.StepInto(s.threadIDArg(request)); err != nil {
		return errResult(err)
	}
	return textResult("stepped into")
}

func (s *Server) handleStepOut(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	if err := sess.StepOut(s.threadIDArg(request)); err != nil {
		return errResult(err)
	}
	return textResult("stepped out")
}

// Inspection

func (s *Server) handleStackTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	depth := 20
	if d, err := request.RequireFloat("depth"); err == nil {
		depth = int(d)
	}

	frames, total, err := sess.StackTrace(s.threadIDArg(request), depth)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]interface{}{
		"stackFrames": frames,
		"totalFrames": total,
	})
}

func (s *Server) handleScopes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	frameID, err := request.RequireFloat("frameId")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("frameId", "Stack frame id from stack_trace."))
	}

	scopes, err := sess.Scopes(int(frameID))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]interface{}{"scopes": scopes})
}

func (s *Server) handleVariables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	ref, err := request.RequireFloat("variablesReference")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("variablesReference", "Reference from scopes or a prior variables call."))
	}

	vars, err := sess.Variables(int(ref))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]interface{}{"variables": vars})
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	expression, err := request.RequireString("expression")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("expression", "Expression to evaluate."))
	}
	frameID := 0
	if f, err := request.RequireFloat("frameId"); err == nil {
		frameID = int(f)
	}

	result, err := sess.Evaluate(expression, frameID)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]interface{}{
		"result":             result.Result,
		"type":               result.Type,
		"variablesReference": result.VariablesReference,
	})
}

func (s *Server) handleThreads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	threads, err := sess.Threads()
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]interface{}{"threads": threads})
}

func (s *Server) handleOutput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	n := 20
	if l, err := request.RequireFloat("lines"); err == nil {
		n = int(l)
	}
	return jsonResult(map[string]interface{}{"output": sess.Output(n)})
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(request)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(sess.Status())
}

func (s *Server) handleTerminate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.RequireString("sessionId")
	if sessionID == "" {
		sess, err := s.manager.GetSession("")
		if err != nil {
			return errResult(err)
		}
		sessionID = sess.ID()
	}
	if err := s.manager.TerminateSession(sessionID); err != nil {
		return errResult(err)
	}
	return textResult("terminated session %s", sessionID)
}

// Manager introspection

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.manager.ListSessions()
	summaries := make([]types.SessionSummary, len(sessions))
	for i, sess := range sessions {
		summaries[i] = sess.Summary(s.manager.IsDefault(sess.ID()))
	}
	return jsonResult(map[string]interface{}{"sessions": summaries})
}

func (s *Server) handleSelectSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("sessionId")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("sessionId", "Session to make the default."))
	}
	if err := s.manager.SelectSession(sessionID); err != nil {
		return errResult(err)
	}
	return textResult("default session is now %s", sessionID)
}

func (s *Server) handleTerminateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("sessionId")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("sessionId", "Session to terminate."))
	}
	if err := s.manager.TerminateSession(sessionID); err != nil {
		return errResult(err)
	}
	return textResult("terminated session %s", sessionID)
}

// Harness invocation

func (s *Server) handleInvoke(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assembly, err := request.RequireString("assembly")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("assembly", "Path to the assembly containing the type."))
	}
	typeName, err := request.RequireString("type")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("type", "Fully-qualified type name."))
	}
	method, err := request.RequireString("method")
	if err != nil {
		return errResult(netdaperrors.MissingParameter("method", "Method name to invoke."))
	}

	methodArgs, err := parseStringArray(request, "args")
	if err != nil {
		return errResult(err)
	}
	ctorArgs, err := parseStringArray(request, "ctorArgs")
	if err != nil {
		return errResult(err)
	}
	cwd, _ := request.RequireString("cwd")
	debug := request.GetBool("debug", false)

	req := harness.InvokeRequest{
		Assembly: assembly,
		Type:     typeName,
		Method:   method,
		Args:     methodArgs,
		CtorArgs: ctorArgs,
		Cwd:      cwd,
	}

	if !debug {
		out, err := harness.Run(ctx, s.config.HarnessPath, req)
		if err != nil {
			return errResult(err)
		}
		return textResult("%s", out)
	}

	explicitID, _ := request.RequireString("sessionId")
	sess, err := s.manager.CreateSession(explicitID, typeName)
	if err != nil {
		return errResult(err)
	}

	caps, err := sess.Launch(ctx, types.SessionConfig{
		Program: s.config.HarnessPath,
		Args:    harness.BuildArgs(req),
		Cwd:     cwd,
	})
	if err != nil {
		_ = s.manager.TerminateSession(sess.ID())
		return errResult(err)
	}

	return jsonResult(map[string]interface{}{
		"sessionId":    sess.ID(),
		"status":       "launched",
		"capabilities": caps.Capabilities,
	})
}
