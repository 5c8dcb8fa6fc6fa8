package ports

type RandomSource interface {
	// Intn returns a number in [0, n).
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}
