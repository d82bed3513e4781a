package position

import "testing"

func TestPositionIsValid(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"valid", Position{Filename: "a.sb", Line: 1, Column: 1}, true},
		{"valid without file", Position{Line: 2, Column: 7}, true},
		{"zero line", Position{Column: 3}, false},
		{"zero column", Position{Line: 3}, false},
		{"zero value", Position{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionString(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"with file", Position{Filename: "src/demo.sb", Line: 3, Column: 5}, "demo.sb:3:5"},
		{"without file", Position{Line: 3, Column: 5}, "3:5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func mkSpan(file string, l1, c1, l2, c2 int) Span {
	return Span{
		Start: Position{Filename: file, Line: l1, Column: c1},
		End:   Position{Filename: file, Line: l2, Column: c2},
	}
}

func TestSpanIsValid(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want bool
	}{
		{"same line ordered", mkSpan("demo.sb", 3, 5, 3, 9), true},
		{"single point", mkSpan("demo.sb", 3, 5, 3, 5), true},
		{"multi line", mkSpan("demo.sb", 3, 9, 4, 2), true},
		{"reversed columns", mkSpan("demo.sb", 3, 9, 3, 5), false},
		{"reversed lines", mkSpan("demo.sb", 4, 1, 3, 1), false},
		{"invalid start", Span{End: Position{Filename: "demo.sb", Line: 3, Column: 5}}, false},
		{"zero value", Span{}, false},
		{
			"different files",
			Span{
				Start: Position{Filename: "a.sb", Line: 1, Column: 1},
				End:   Position{Filename: "b.sb", Line: 1, Column: 2},
			},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanString(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want string
	}{
		{"same line", mkSpan("src/demo.sb", 3, 5, 3, 9), "demo.sb:3:5-9"},
		{"multi line", mkSpan("src/demo.sb", 3, 5, 4, 2), "demo.sb:3:5-4:2"},
		{"without file", mkSpan("", 3, 5, 3, 9), "3:5-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
