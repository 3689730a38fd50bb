// Package classify maps texture file names to a content kind and a
// dimension kind using suffix conventions (foo-n.png is a normal map,
// sky-cube.png a cube map). Classification is pure: no state, no I/O.
package classify
