package session

import (
	"path/filepath"

	godap "github.com/google/go-dap"

	"github.com/netdap/netdap-mcp/internal/dap"
	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
	"github.com/netdap/netdap-mcp/pkg/types"
)

// SetBreakpoint normalizes file to an absolute path, records the condition
// in the per-file condition map, re-emits the complete per-file set, and
// returns the debugger's echo for the requested line.
func (s *Session) SetBreakpoint(file string, line int, condition string) (types.BreakpointInfo, error) {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return types.BreakpointInfo{}, netdaperrors.BreakpointFailed(file, line, err.Error())
	}

	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return types.BreakpointInfo{}, err
	}
	client := s.client

	fb, ok := s.breakpoints[absPath]
	if !ok {
		fb = &fileBreakpoints{
			conditions: make(map[int]string),
			echoes:     make(map[int]types.BreakpointInfo),
		}
		s.breakpoints[absPath] = fb
	}
	fb.conditions[line] = condition
	s.mu.Unlock()

	echoes, err := s.emitBreakpoints(client, absPath, fb)
	if err != nil {
		return types.BreakpointInfo{}, netdaperrors.BreakpointFailed(absPath, line, err.Error())
	}

	info, ok := echoes[line]
	if !ok {
		return types.BreakpointInfo{}, netdaperrors.BreakpointFailed(absPath, line, "debugger did not echo this line")
	}
	return info, nil
}

// RemoveBreakpoint removes line from both the condition and line sets for
// file and re-emits the remaining set.
func (s *Session) RemoveBreakpoint(file string, line int) error {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return netdaperrors.BreakpointFailed(file, line, err.Error())
	}

	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return err
	}
	client := s.client

	fb, ok := s.breakpoints[absPath]
	if !ok {
		s.mu.Unlock()
		return netdaperrors.BreakpointNotFound(line)
	}
	if _, ok := fb.conditions[line]; !ok {
		s.mu.Unlock()
		return netdaperrors.BreakpointNotFound(line)
	}
	delete(fb.conditions, line)
	delete(fb.echoes, line)
	s.mu.Unlock()

	if _, err := s.emitBreakpoints(client, absPath, fb); err != nil {
		return netdaperrors.BreakpointFailed(absPath, line, err.Error())
	}
	return nil
}

// ListBreakpoints flattens every stored echo across every file.
func (s *Session) ListBreakpoints() []types.BreakpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []types.BreakpointInfo
	for _, fb := range s.breakpoints {
		for _, info := range fb.echoes {
			all = append(all, info)
		}
	}
	return all
}

// emitBreakpoints sends the complete current line set for path and stores
// the echoed result per line.
func (s *Session) emitBreakpoints(client *dap.Client, path string, fb *fileBreakpoints) (map[int]types.BreakpointInfo, error) {
	lines := make([]int, 0, len(fb.conditions))
	for line := range fb.conditions {
		lines = append(lines, line)
	}

	breakpoints := make([]godap.SourceBreakpoint, 0, len(lines))
	for _, line := range lines {
		sbp := godap.SourceBreakpoint{Line: line}
		if cond := fb.conditions[line]; cond != "" {
			sbp.Condition = cond
		}
		breakpoints = append(breakpoints, sbp)
	}

	echoed, err := client.SetBreakpoints(godap.Source{Path: path}, breakpoints)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	fb.echoes = make(map[int]types.BreakpointInfo, len(echoed))
	for i, bp := range echoed {
		line := bp.Line
		if i < len(lines) {
			// netcoredbg echoes breakpoints in request order; fall back to
			// the request's line if the echo omits Line entirely.
			if line == 0 {
				line = lines[i]
			}
		}
		fb.echoes[line] = types.BreakpointInfo{
			ID:       bp.Id,
			Verified: bp.Verified,
			Message:  bp.Message,
			Path:     path,
			Line:     line,
			Column:   bp.Column,
		}
	}
	result := make(map[int]types.BreakpointInfo, len(fb.echoes))
	for k, v := range fb.echoes {
		result[k] = v
	}
	s.mu.Unlock()

	return result, nil
}

// ReplayBreakpoints re-sends every tracked file's full breakpoint set over
// a freshly (re)attached client. Per-file failures are absorbed so one
// broken file cannot break a reconnect.
func (s *Session) ReplayBreakpoints(client *dap.Client) {
	s.mu.Lock()
	files := make(map[string]*fileBreakpoints, len(s.breakpoints))
	for path, fb := range s.breakpoints {
		files[path] = fb
	}
	s.mu.Unlock()

	for path, fb := range files {
		if _, err := s.emitBreakpoints(client, path, fb); err != nil {
			s.AppendOutput("[watch] failed to replay breakpoints for " + path + ": " + err.Error())
		}
	}
}
