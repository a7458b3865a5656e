package quiz

// DefaultPool is the built-in set of clean yen denominations used when no pool is stored.
var DefaultPool = []int{
	10, 30, 50, 80, 100, 120, 150, 180, 198, 250,
	300, 350, 380, 480, 500, 600, 680, 800, 850, 980,
	1000, 1200, 1500, 1980, 2000, 2500, 3000, 3800, 4500, 5000,
	6000, 6800, 8000, 8800, 9800, 10000, 12000, 15000, 19800, 20000,
	30000, 38000, 50000, 68000, 80000, 98000,
}
