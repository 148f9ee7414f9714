package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowInfo describes one toplevel window.
type WindowInfo struct {
	Handle   uint32   `json:"handle"`
	Title    string   `json:"title"`
	HasTitle bool     `json:"has_title"`
	AppID    string   `json:"app_id,omitempty"`
	Displays []string `json:"displays"`
	Focused  bool     `json:"focused"`
}

// DisplayInfo describes one output.
type DisplayInfo struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListWindowsOutput is the result of list_windows.
type ListWindowsOutput struct {
	Windows      []WindowInfo  `json:"windows"`
	Displays     []DisplayInfo `json:"displays"`
	FocusedTitle string        `json:"focused_title"`
	Matched      bool          `json:"matched"`
	TitleFilters []string      `json:"title_filters"`
}

// TitleFilterInput names a single title filter.
type TitleFilterInput struct {
	Title string `json:"title" jsonschema:"Exact window title, matched case-sensitively"`
}

// ListTitleFiltersInput is the input for the list_title_filters tool.
type ListTitleFiltersInput struct{}

// TitleFiltersOutput lists the configured title filters.
type TitleFiltersOutput struct {
	TitleFilters []string `json:"title_filters"`
}

// MatrixInput is the input for the saturation_matrix tool.
type MatrixInput struct {
	Saturation *float64 `json:"saturation,omitempty" jsonschema:"Saturation between 0 and 4 (default: configured saturation)"`
}

// MatrixOutput holds a colour transform in float and wire form.
type MatrixOutput struct {
	Saturation float64     `json:"saturation"`
	Rows       [][]float64 `json:"rows"`
	Fixed      [][]int32   `json:"fixed"`
}
