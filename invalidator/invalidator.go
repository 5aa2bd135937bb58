// Package invalidator implements a persistent on-disk store mapping a
// target id to the last cache key hash that was successfully used to
// build it.
package invalidator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/panux/anvil/cachekey"
	"github.com/sirupsen/logrus"
)

// safeChars are the characters that may appear unescaped in a filename;
// everything else (such as path separators) is percent-escaped, and
// safeFilename escapes the uppercase letters listed here as well.
const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789._-"

// safeFilename escapes id into a filename that cannot collide with a
// distinct id on a case-insensitive filesystem: every byte outside
// safeChars, and every uppercase ASCII letter (so "Foo" and "foo" cannot
// collide once case is folded by the filesystem), is percent-escaped.
func safeFilename(id string) string {
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		if strings.IndexByte(safeChars, c) >= 0 && !(c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
			continue
		}
		b.WriteString("%")
		b.WriteString(strings.ToUpper(hexByte(c)))
	}
	return b.String()
}

func hexByte(c byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[c>>4], hex[c&0xf]})
}

// Invalidator is a BuildInvalidator rooted at Root. Layout:
// <Root>/<generator_version>/<safe_filename(id)>.hash, file body the hex
// digest, trimmed.
type Invalidator struct {
	Root             string
	GeneratorVersion string

	log *logrus.Entry
}

// New constructs an Invalidator rooted at root for the given generator
// version.
func New(root, generatorVersion string) *Invalidator {
	return &Invalidator{
		Root:             root,
		GeneratorVersion: generatorVersion,
		log:              logrus.WithField("component", "invalidator"),
	}
}

func (inv *Invalidator) versionDir() string {
	return filepath.Join(inv.Root, inv.GeneratorVersion)
}

func (inv *Invalidator) pathFor(id string) string {
	return filepath.Join(inv.versionDir(), safeFilename(id)+".hash")
}

// ExistingHash returns the on-disk hash for id, and false if no entry
// exists.
func (inv *Invalidator) ExistingHash(id string) (hash string, ok bool, err error) {
	b, err := os.ReadFile(inv.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(b)), true, nil
}

// NeedsUpdate reports whether key's hash differs from (or is absent from)
// the on-disk record for key.ID.
func (inv *Invalidator) NeedsUpdate(key cachekey.CacheKey) (bool, error) {
	existing, ok, err := inv.ExistingHash(key.ID)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return existing != key.Hash, nil
}

// Update writes key.Hash to key.ID's file, overwriting any prior value.
// No fsync guarantee is made; recovery on crash is to redo the build.
func (inv *Invalidator) Update(key cachekey.CacheKey) error {
	path := inv.pathFor(key.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(key.Hash), 0o644)
}

// ForceInvalidate removes the on-disk record for id. A missing file is
// not an error.
func (inv *Invalidator) ForceInvalidate(id string) error {
	err := os.Remove(inv.pathFor(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ForceInvalidateAll clears the entire generator-version root, discarding
// every recorded hash.
func (inv *Invalidator) ForceInvalidateAll() error {
	err := os.RemoveAll(inv.versionDir())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	inv.log.WithField("generator_version", inv.GeneratorVersion).Info("invalidated all recorded hashes")
	return nil
}
