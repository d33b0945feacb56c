//go:build debug

// Gomega should not be a dependency of the non-debug build.

package eviction

import (
	"errors"
	"log"

	. "github.com/onsi/gomega"
	pkgerrors "github.com/pkg/errors"
)

var _ = func() (_ struct{}) {
	RegisterFailHandler(invariantFailHandler)
	return
}()

func invariantFailHandler(message string, _ ...int) {
	log.Fatalf("FATAL: eviction invariants are broken: %+v", pkgerrors.WithStack(errors.New(message)))
}

func (l *LRU[K, V]) checkInvariants() {
	Expect(len(l.index)).To(BeNumerically("<=", l.capacity), "over capacity")
	Expect(l.order.size).To(Equal(len(l.index)), "list and index sizes differ")

	seen := 0
	prev := nilIdx
	for i := l.order.head; i != nilIdx; i = l.arena.at(i).next {
		n := l.arena.at(i)
		Expect(n.prev).To(Equal(prev), "broken prev link")
		idx, ok := l.index[n.key]
		Expect(ok).To(BeTrue(), "listed node missing from index")
		Expect(idx).To(Equal(i), "index points at another node")
		prev = i
		seen++
	}
	Expect(l.order.tail).To(Equal(prev), "tail is not the last node")
	Expect(seen).To(Equal(len(l.index)), "index holds unlisted nodes")
}

func (l *LFU[K, V]) checkInvariants() {
	Expect(len(l.index)).To(BeNumerically("<=", l.capacity), "over capacity")

	var members, total int
	minFreq := 0
	for f, b := range l.buckets {
		Expect(b.freq).To(Equal(f), "bucket stored under wrong frequency")
		count := 0
		for i := b.first(); i != nilIdx; i = l.arena.at(i).next {
			n := l.arena.at(i)
			Expect(n.freq).To(Equal(f), "node in bucket of another frequency")
			Expect(n.freq).To(BeNumerically(">=", 1), "frequency below one")
			idx, ok := l.index[n.key]
			Expect(ok).To(BeTrue(), "bucket node missing from index")
			Expect(idx).To(Equal(i), "index points at another node")
			total += n.freq
			count++
		}
		Expect(count).To(Equal(b.len()), "bucket size drifted")
		Expect(count).To(BeNumerically(">", 0), "empty bucket kept")
		members += count
		if count > 0 && (minFreq == 0 || f < minFreq) {
			minFreq = f
		}
	}
	if minFreq == 0 {
		minFreq = 1
	}

	Expect(members).To(Equal(len(l.index)), "index and buckets disagree")
	Expect(total).To(Equal(l.totalFreq), "totalFreq drifted")
	Expect(l.minFreq).To(Equal(minFreq), "minFreq is not the smallest non-empty bucket")
}
