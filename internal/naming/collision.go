package naming

import "sync"

// CollisionDetector records which source claimed each destination path.
// All methods are goroutine-safe.
type CollisionDetector struct {
	mu     sync.Mutex
	owners map[string]string // destination path -> first source that claimed it
	count  int
}

// NewCollisionDetector creates a ready-to-use detector.
func NewCollisionDetector() *CollisionDetector {
	return &CollisionDetector{owners: make(map[string]string)}
}

// Claim records that src produces dest. When another source already claimed
// dest it returns that source and true; the later source still overwrites
// the earlier output at build time.
func (cd *CollisionDetector) Claim(src, dest string) (string, bool) {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	owner, exists := cd.owners[dest]
	if !exists || owner == src {
		cd.owners[dest] = src
		return "", false
	}
	cd.count++
	return owner, true
}

// Collisions is the number of Claim calls that hit an existing owner.
func (cd *CollisionDetector) Collisions() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.count
}
