package storage_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/racedirector/protocol"
	"github.com/luma/racedirector/storage"
)

var _ = Describe("storage / EntryCache", func() {
	var cache *storage.EntryCache

	ferrari := protocol.CarEntry{
		CarIndex:   5,
		TeamName:   "Ferrari",
		RaceNumber: 51,
		Drivers:    []protocol.DriverEntry{{FirstName: "Ann", LastName: "Lee"}},
	}

	BeforeEach(func() {
		cache = storage.NewEntryCache()
		cache.Reset([]uint16{5, 2, 9})
	})

	Describe("Reset()", func() {
		It("creates placeholder entries in entry list order", func() {
			Expect(cache.Len()).To(Equal(3))

			snapshot := cache.Snapshot()
			Expect(snapshot).To(HaveLen(3))
			Expect(snapshot[0]).To(Equal(protocol.NewCarEntry(5)))
			Expect(snapshot[1].CarIndex).To(Equal(uint16(2)))
			Expect(snapshot[2].CarIndex).To(Equal(uint16(9)))
		})

		It("throws away everything that was cached before", func() {
			Expect(cache.Patch(ferrari)).To(BeTrue())

			cache.Reset([]uint16{5, 7})
			Expect(cache.Len()).To(Equal(2))
			Expect(cache.Get(5)).To(Equal(protocol.NewCarEntry(5)))

			_, ok := cache.Lookup(9)
			Expect(ok).To(BeFalse())
		})

		It("keeps duplicate indices once", func() {
			cache.Reset([]uint16{1, 1, 2})
			Expect(cache.Len()).To(Equal(2))
		})

		It("can empty the cache", func() {
			cache.Reset(nil)
			Expect(cache.Len()).To(BeZero())
			Expect(cache.Snapshot()).To(BeEmpty())
		})
	})

	Describe("Patch()", func() {
		It("replaces the details of a known car", func() {
			Expect(cache.Patch(ferrari)).To(BeTrue())

			entry, ok := cache.Lookup(5)
			Expect(ok).To(BeTrue())
			Expect(entry.TeamName).To(Equal("Ferrari"))

			count, ok := cache.DriverCount(5)
			Expect(ok).To(BeTrue())
			Expect(count).To(Equal(1))
		})

		It("drops details of an unknown car", func() {
			unknown := ferrari
			unknown.CarIndex = 99

			Expect(cache.Patch(unknown)).To(BeFalse())
			Expect(cache.Len()).To(Equal(3))

			_, ok := cache.DriverCount(99)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Get()", func() {
		It("returns the default entry on a miss", func() {
			entry := cache.Get(999)
			Expect(entry.CarIndex).To(Equal(uint16(65535)))
			Expect(entry.RaceNumber).To(Equal(int32(-1)))
			Expect(entry.CupCategory).To(Equal(uint8(255)))
		})
	})

	It("hands out copies", func() {
		Expect(cache.Patch(ferrari)).To(BeTrue())

		entry := cache.Get(5)
		entry.TeamName = "Changed"
		entry.Drivers[0].FirstName = "Changed"

		Expect(cache.Get(5).TeamName).To(Equal("Ferrari"))
		Expect(cache.Get(5).Drivers[0].FirstName).To(Equal("Ann"))
	})
})
