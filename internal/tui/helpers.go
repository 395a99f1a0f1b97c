package tui

// columnsFor returns how many cards fit side by side
func columnsFor(width int) int {
	cols := width / cardWidth
	if cols < 1 {
		return 1
	}
	return cols
}

// clamp keeps i inside [0, n)
func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
