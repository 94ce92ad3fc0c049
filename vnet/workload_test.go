package vnet

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Workload", func() {
	var w *Workload

	BeforeEach(func() {
		var err error
		w, err = NewWorkload("A", 1000, 10)
		Expect(err).To(BeNil())
	})

	It("should reject a non-positive bandwidth", func() {
		_, err := NewWorkload("bad", 0, 10)
		Expect(err).To(HaveOccurred())

		_, err = NewWorkload("bad", -1, 10)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a negative capacity", func() {
		_, err := NewWorkload("bad", 1000, -1)
		Expect(err).To(HaveOccurred())
	})

	It("should keep outbox destinations in first-use order", func() {
		w.EnqueueOutbound(NewPayload("A", "C", 100))
		w.EnqueueOutbound(NewPayload("A", "B", 100))
		w.EnqueueOutbound(NewPayload("A", "C", 100))

		Expect(w.OutboundDestinations()).To(Equal([]string{"C", "B"}))
		Expect(w.OutboundTo("C")).To(HaveLen(2))
		Expect(w.OutboundCount()).To(Equal(3))
	})

	It("should clear one destination queue without touching the others", func() {
		w.EnqueueOutbound(NewPayload("A", "B", 100))
		w.EnqueueOutbound(NewPayload("A", "C", 100))

		w.ClearOutboundTo("B")

		Expect(w.OutboundTo("B")).To(BeEmpty())
		Expect(w.OutboundTo("C")).To(HaveLen(1))
		Expect(w.OutboundCount()).To(Equal(1))
	})

	It("should drop a cleared destination from the destination list", func() {
		w.EnqueueOutbound(NewPayload("A", "B", 100))
		w.EnqueueOutbound(NewPayload("A", "C", 100))

		w.ClearOutboundTo("B")

		Expect(w.OutboundDestinations()).To(Equal([]string{"C"}))

		w.EnqueueOutbound(NewPayload("A", "B", 100))

		Expect(w.OutboundDestinations()).To(Equal([]string{"C", "B"}))
	})

	It("should consume inbound payloads in FIFO order per source", func() {
		first := NewPayload("B", "A", 100)
		second := NewPayload("B", "A", 200)
		w.DeliverInbound(first)
		w.DeliverInbound(second)

		Expect(w.InboundCount()).To(Equal(2))
		Expect(w.ConsumeInbound("B")).To(BeIdenticalTo(first))
		Expect(w.ConsumeInbound("B")).To(BeIdenticalTo(second))
		Expect(w.ConsumeInbound("B")).To(BeNil())
	})

	It("should report no inbound payloads from an unknown source", func() {
		Expect(w.InboundFrom("Z")).To(BeEmpty())
		Expect(w.ConsumeInbound("Z")).To(BeNil())
	})
})
