package grid

// Calendar heatmap dimensions.
const (
	Weeks       = 52
	DaysPerWeek = 7
	Levels      = 5
)

// Grid holds one activity level per calendar cell. Rows are days of the week,
// columns are weeks. A Grid is a plain array, so copies never share state.
type Grid [DaysPerWeek][Weeks]uint8

// At returns the level at day row, week col.
func (g Grid) At(row, col int) uint8 {
	return g[row][col]
}

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int {
	return Weeks * DaysPerWeek
}

// Histogram counts cells per level.
func (g Grid) Histogram() [Levels]int {
	var h [Levels]int
	for row := range DaysPerWeek {
		for col := range Weeks {
			h[g[row][col]]++
		}
	}
	return h
}

// Sum returns the sum of all levels.
func (g Grid) Sum() int {
	total := 0
	for row := range DaysPerWeek {
		for col := range Weeks {
			total += int(g[row][col])
		}
	}
	return total
}
