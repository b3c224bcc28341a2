/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"log/slog"

	"sketchboard/internal/engine"
	applog "sketchboard/internal/log"
)

// Run replays s against eng. It stops at the first step the engine rejects.
func Run(eng *engine.Engine, s Script) error {
	l := applog.WithOperation(applog.WithComponent("script"), "run").With(slog.String("script", s.Name))
	if s.Size.W > 0 && s.Size.H > 0 {
		eng.Resize(s.Size.W, s.Size.H)
	}
	tool := eng.Tool()
	for i, st := range s.Steps {
		if err := apply(eng, &tool, st); err != nil {
			l.Warn("step failed", slog.Int("step", i), slog.Int("line", st.Line), slog.Any("err", err))
			return fmt.Errorf("step %d (line %d, %s): %w", i+1, st.Line, st.Kind, err)
		}
	}
	l.Debug("script done", slog.Int("steps", len(s.Steps)), slog.Int("log", len(eng.Log())))
	return nil
}

func apply(eng *engine.Engine, tool *engine.Tool, st Step) error {
	switch st.Kind {
	case StepTool:
		if err := eng.Dispatch(engine.Action{Kind: engine.ActionSetTool, Tool: st.Tool}); err != nil {
			return err
		}
		*tool = st.Tool
	case StepDown:
		eng.PointerDown(st.Points[0], *tool)
	case StepMove:
		eng.PointerMove(st.Points[0], *tool)
	case StepUp:
		eng.PointerUp(st.Points[0], *tool)
	case StepDrag:
		eng.PointerDown(st.Points[0], *tool)
		for _, p := range st.Points[1:] {
			eng.PointerMove(p, *tool)
		}
		eng.PointerUp(st.Points[len(st.Points)-1], *tool)
	case StepWheel:
		eng.WheelZoom(st.Delta)
	case StepAction:
		return eng.Dispatch(engine.Action{Kind: st.Action})
	case StepStrokeColor:
		return eng.Dispatch(engine.Action{Kind: engine.ActionSetStrokeColor, Color: st.Color})
	case StepFillColor:
		return eng.Dispatch(engine.Action{Kind: engine.ActionSetFillColor, Color: st.Color})
	case StepWidth:
		return eng.Dispatch(engine.Action{Kind: engine.ActionSetStrokeWidth, Width: st.Width})
	case StepResize:
		eng.Resize(st.Size.W, st.Size.H)
	default:
		return fmt.Errorf("unknown step kind %d", int(st.Kind))
	}
	return nil
}
