package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bryanchriswhite/FocusVibrance/internal/ctm"
	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
	"github.com/bryanchriswhite/FocusVibrance/internal/wayland"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	cfg, err := s.configMgr.Get()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	snapshot, err := s.probe(engine.Options{
		TitleFilters: cfg.TitleFilters,
		Saturation:   cfg.Saturation,
	})
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("list_windows: %w", err)
	}
	return nil, windowsOutput(snapshot), nil
}

func windowsOutput(snapshot engine.Snapshot) ListWindowsOutput {
	names := make(map[display.ID]string, len(snapshot.Displays))
	out := ListWindowsOutput{
		Windows:      make([]WindowInfo, 0, len(snapshot.Windows)),
		Displays:     make([]DisplayInfo, 0, len(snapshot.Displays)),
		Matched:      snapshot.Matched,
		TitleFilters: snapshot.TitleFilters,
	}

	for _, d := range snapshot.Displays {
		name := d.Name
		if name == "" {
			name = d.ID.String()
		}
		names[d.ID] = name
		out.Displays = append(out.Displays, DisplayInfo{ID: uint32(d.ID), Name: name, Description: d.Description})
	}

	for _, w := range snapshot.Windows {
		info := WindowInfo{
			Handle:   uint32(w.Handle),
			Title:    w.Title,
			HasTitle: w.HasTitle,
			AppID:    w.AppID,
			Displays: make([]string, 0, len(w.Displays)),
			Focused:  snapshot.Focused != nil && snapshot.Focused.Handle == w.Handle,
		}
		for _, d := range w.Displays {
			if name, ok := names[d]; ok {
				info.Displays = append(info.Displays, name)
			} else {
				info.Displays = append(info.Displays, d.String())
			}
		}
		out.Windows = append(out.Windows, info)
	}

	if snapshot.Focused != nil {
		out.FocusedTitle = snapshot.Focused.Title
	}
	return out
}

func (s *Server) handleListTitleFilters(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListTitleFiltersInput) (*mcpsdk.CallToolResult, TitleFiltersOutput, error) {
	return nil, TitleFiltersOutput{TitleFilters: s.configMgr.TitleFilters()}, nil
}

func (s *Server) handleAddTitleFilter(_ context.Context, _ *mcpsdk.CallToolRequest, args TitleFilterInput) (*mcpsdk.CallToolResult, TitleFiltersOutput, error) {
	if err := s.configMgr.AddTitleFilter(args.Title); err != nil {
		return nil, TitleFiltersOutput{}, err
	}
	return nil, TitleFiltersOutput{TitleFilters: s.configMgr.TitleFilters()}, nil
}

func (s *Server) handleRemoveTitleFilter(_ context.Context, _ *mcpsdk.CallToolRequest, args TitleFilterInput) (*mcpsdk.CallToolResult, TitleFiltersOutput, error) {
	if err := s.configMgr.RemoveTitleFilter(args.Title); err != nil {
		return nil, TitleFiltersOutput{}, err
	}
	return nil, TitleFiltersOutput{TitleFilters: s.configMgr.TitleFilters()}, nil
}

func (s *Server) handleSaturationMatrix(_ context.Context, _ *mcpsdk.CallToolRequest, args MatrixInput) (*mcpsdk.CallToolResult, MatrixOutput, error) {
	var saturation float64
	if args.Saturation != nil {
		saturation = *args.Saturation
	} else {
		cfg, err := s.configMgr.Get()
		if err != nil {
			return nil, MatrixOutput{}, err
		}
		saturation = cfg.Saturation
	}

	if !ctm.ValidSaturation(saturation) {
		return nil, MatrixOutput{}, fmt.Errorf("saturation %v out of range [%v, %v]", saturation, ctm.MinSaturation, ctm.MaxSaturation)
	}

	out := MatrixOutput{Saturation: saturation}
	for _, row := range ctm.Saturation(saturation).Rows() {
		fixed := make([]int32, len(row))
		for i, v := range row {
			fixed[i] = wayland.FixedFromFloat(v)
		}
		out.Rows = append(out.Rows, []float64{row[0], row[1], row[2]})
		out.Fixed = append(out.Fixed, fixed)
	}
	return nil, out, nil
}
