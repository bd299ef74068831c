package buffer_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/buffer"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/model"
	"github.com/MisterPoplet/CompE560-SatelliteProject/internal/xoshiro256"
)

var _ = Describe("Manager", func() {
	var base time.Time

	BeforeEach(func() {
		base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	})

	entry := func(id, size int, createdAt time.Time) model.Entry {
		return model.Entry{BundleID: id, CreatedAt: createdAt, Size: size}
	}

	Describe("Oldest eviction", func() {
		It("evicts the FIFO head first on overflow", func() {
			m, err := buffer.NewManager("gs-1", 100, buffer.Oldest, nil)
			Expect(err).NotTo(HaveOccurred())
			defer m.Close()

			admitted, _ := m.Admit(entry(1, 60, base))
			Expect(admitted).To(BeTrue())
			admitted, _ = m.Admit(entry(2, 60, base.Add(time.Second)))
			Expect(admitted).To(BeTrue())

			entries := m.Entries()
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].BundleID).To(Equal(2))
			Expect(m.BufferDrops()).To(Equal(1))
		})
	})

	Describe("Largest eviction", func() {
		It("evicts the maximum-size entry, ties to lowest index", func() {
			m, err := buffer.NewManager("gs-1", 100, buffer.Largest, nil)
			Expect(err).NotTo(HaveOccurred())
			defer m.Close()

			m.Admit(entry(1, 30, base))
			m.Admit(entry(2, 50, base))
			admitted, evicted := m.Admit(entry(3, 60, base))

			Expect(admitted).To(BeTrue())
			Expect(evicted).To(HaveLen(1))
			Expect(evicted[0].BundleID).To(Equal(2)) // largest of the two existing entries
		})
	})

	Describe("Random eviction", func() {
		It("draws the victim from the supplied RNG stream deterministically", func() {
			rng1 := xoshiro256.New(7)
			m1, _ := buffer.NewManager("gs-1", 90, buffer.Random, rng1)
			defer m1.Close()
			m1.Admit(entry(1, 30, base))
			m1.Admit(entry(2, 30, base))
			m1.Admit(entry(3, 30, base))
			_, evicted1 := m1.Admit(entry(4, 30, base))

			rng2 := xoshiro256.New(7)
			m2, _ := buffer.NewManager("gs-1", 90, buffer.Random, rng2)
			defer m2.Close()
			m2.Admit(entry(1, 30, base))
			m2.Admit(entry(2, 30, base))
			m2.Admit(entry(3, 30, base))
			_, evicted2 := m2.Admit(entry(4, 30, base))

			Expect(evicted1).To(Equal(evicted2))
		})
	})

	Describe("self-drop", func() {
		It("drops the incoming entry itself when it alone exceeds capacity", func() {
			m, _ := buffer.NewManager("gs-1", 50, buffer.Oldest, nil)
			defer m.Close()
			admitted, _ := m.Admit(entry(1, 60, base))
			Expect(admitted).To(BeFalse())
			Expect(m.BufferDrops()).To(Equal(1))
			Expect(m.Len()).To(Equal(0))
		})
	})

	Describe("Sweep", func() {
		It("removes entries whose TTL has elapsed by the given time", func() {
			m, _ := buffer.NewManager("gs-1", 1000, buffer.Oldest, nil)
			defer m.Close()
			m.Admit(model.Entry{BundleID: 1, CreatedAt: base, Size: 10, TTL: time.Minute})
			m.Admit(model.Entry{BundleID: 2, CreatedAt: base, Size: 10, TTL: time.Hour})

			expired := func(createdAt time.Time, ttl time.Duration) bool {
				return base.Add(2 * time.Minute).After(createdAt.Add(ttl))
			}
			dropped := m.Sweep(expired)
			Expect(dropped).To(HaveLen(1))
			Expect(dropped[0].BundleID).To(Equal(1))
			Expect(m.Len()).To(Equal(1))
		})
	})

	Describe("ReduceHead", func() {
		It("shrinks the FIFO head and removes it once its size reaches zero", func() {
			m, _ := buffer.NewManager("gs-1", 1000, buffer.Oldest, nil)
			defer m.Close()
			m.Admit(entry(1, 100, base))

			m.ReduceHead(40)
			Expect(m.Entries()[0].Size).To(Equal(60))
			Expect(m.CurrentBytes()).To(Equal(60))

			m.ReduceHead(60)
			Expect(m.Len()).To(Equal(0))
		})
	})
})
