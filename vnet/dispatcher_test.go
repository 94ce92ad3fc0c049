package vnet

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/cloudgridlab/cloudgrid/sim"
)

var _ = Describe("Dispatcher", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		model    *MockProcessingModel
		counter  *TrafficCounter
		sw       *Switch

		wlA, wlB, wlC *Workload
		h1            *Host
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
		model = NewMockProcessingModel(mockCtrl)
		counter = &TrafficCounter{}
		sw = MakeSwitchBuilder().
			WithEngine(engine).
			WithLatency(0.001).
			Build("Switch")

		var err error
		wlA, err = NewWorkload("A", 1000, 10)
		Expect(err).To(BeNil())
		wlB, err = NewWorkload("B", 1000, 10)
		Expect(err).To(BeNil())
		wlC, err = NewWorkload("C", 2000, 10)
		Expect(err).To(BeNil())

		h1 = MakeHostBuilder().
			WithEngine(engine).
			WithProcessingModel(model).
			WithSwitch(sw).
			WithTrafficCounter(counter).
			WithResidents(wlA, wlB).
			Build("H1")

		MakeHostBuilder().
			WithEngine(engine).
			WithProcessingModel(model).
			WithSwitch(sw).
			WithTrafficCounter(counter).
			WithResidents(wlC).
			Build("H2")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should deliver co-resident payloads with zero delay", func() {
		wlA.EnqueueOutbound(NewPayload("A", "B", 500))

		model.EXPECT().
			UpdateProcessing(sim.VTime(1.0), h1).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(1.0), wlA, 10.0).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(1.0), wlB, 10.0).
			Return(NoNextEvent)

		h1.Dispatcher().Advance(1.0)

		received := wlB.InboundFrom("A")
		Expect(received).To(HaveLen(1))
		Expect(received[0].RecvTime).To(Equal(sim.VTime(1.0)))
		Expect(received[0].SizeUnits).To(Equal(500.0))
		Expect(wlA.OutboundCount()).To(Equal(0))
		Expect(counter.Total()).To(Equal(0.0))
		Expect(h1.Dispatcher().LocalDeliveries()).To(Equal([]string{"B"}))
	})

	It("should route remote payloads through the switch with fair-share delay", func() {
		wlA.EnqueueOutbound(NewPayload("A", "C", 300))
		wlA.EnqueueOutbound(NewPayload("A", "C", 700))

		model.EXPECT().
			UpdateProcessing(sim.VTime(2.0), h1).
			Return(NoNextEvent)

		var scheduled []*PacketUpEvent
		engine.EXPECT().Schedule(gomock.Any()).Do(func(e sim.Event) {
			scheduled = append(scheduled, e.(*PacketUpEvent))
		}).Times(2)

		h1.Dispatcher().Advance(2.0)

		// bw 1000 shared across 2 payloads: 1000*300/(1000/2) = 600 and
		// 1000*700/(1000/2) = 1400.
		Expect(scheduled[0].Time()).To(Equal(sim.VTime(602.0)))
		Expect(scheduled[1].Time()).To(Equal(sim.VTime(1402.0)))
		Expect(scheduled[0].Envelope.OriginHost).To(Equal("H1"))
		Expect(scheduled[0].Envelope.DispatchTime).To(Equal(sim.VTime(2.0)))
		Expect(counter.Total()).To(Equal(1000.0))
		Expect(wlA.OutboundCount()).To(Equal(0))
	})

	It("should share bandwidth across all queued payloads, local ones included", func() {
		wlA.EnqueueOutbound(NewPayload("A", "B", 200))
		wlA.EnqueueOutbound(NewPayload("A", "C", 800))

		model.EXPECT().
			UpdateProcessing(sim.VTime(0.0), h1).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(0.0), wlA, 10.0).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(0.0), wlB, 10.0).
			Return(NoNextEvent)

		var up *PacketUpEvent
		engine.EXPECT().Schedule(gomock.Any()).Do(func(e sim.Event) {
			up = e.(*PacketUpEvent)
		})

		h1.Dispatcher().Advance(0.0)

		// totalPkts is 2, so the remote payload sees half the bandwidth.
		Expect(up.Time()).To(Equal(sim.VTime(1600.0)))
		Expect(counter.Total()).To(Equal(800.0))
		Expect(wlB.InboundFrom("A")).To(HaveLen(1))
	})

	It("should fold the re-triggered model's next event time into the tick result", func() {
		wlA.EnqueueOutbound(NewPayload("A", "B", 100))

		model.EXPECT().
			UpdateProcessing(sim.VTime(5.0), h1).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(5.0), wlA, 10.0).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(5.0), wlB, 10.0).
			Return(sim.VTime(7.0))

		next := h1.Dispatcher().Advance(5.0)

		Expect(next).To(Equal(sim.VTime(7.0)))
	})

	It("should route payloads enqueued by a re-triggered resident in the same tick", func() {
		wlA.EnqueueOutbound(NewPayload("A", "B", 500))

		model.EXPECT().
			UpdateProcessing(sim.VTime(1.0), h1).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(1.0), wlA, 10.0).
			Return(NoNextEvent)
		model.EXPECT().
			ResumeWorkload(sim.VTime(1.0), wlB, 10.0).
			DoAndReturn(func(now sim.VTime, w *Workload, capacity float64) sim.VTime {
				w.EnqueueOutbound(NewPayload("B", "C", 300))
				return NoNextEvent
			})

		var up *PacketUpEvent
		engine.EXPECT().Schedule(gomock.Any()).Do(func(e sim.Event) {
			up = e.(*PacketUpEvent)
		})

		h1.Dispatcher().Advance(1.0)

		// B's fresh payload leaves in a second drain pass instead of
		// lingering in the outbox with no event left to route it.
		Expect(wlB.OutboundCount()).To(Equal(0))
		Expect(up).NotTo(BeNil())
		Expect(up.Time()).To(Equal(sim.VTime(301.0)))
		Expect(counter.Total()).To(Equal(300.0))
	})

	It("should keep draining while re-triggered residents deliver locally", func() {
		wlA.EnqueueOutbound(NewPayload("A", "B", 100))

		model.EXPECT().
			UpdateProcessing(sim.VTime(1.0), h1).
			Return(NoNextEvent)

		// First re-trigger: B answers A locally, which forces another
		// drain pass and another re-trigger round.
		model.EXPECT().
			ResumeWorkload(sim.VTime(1.0), wlA, 10.0).
			Return(NoNextEvent).
			Times(2)
		first := model.EXPECT().
			ResumeWorkload(sim.VTime(1.0), wlB, 10.0).
			DoAndReturn(func(now sim.VTime, w *Workload, capacity float64) sim.VTime {
				w.EnqueueOutbound(NewPayload("B", "A", 200))
				return NoNextEvent
			})
		model.EXPECT().
			ResumeWorkload(sim.VTime(1.0), wlB, 10.0).
			Return(NoNextEvent).
			After(first)

		h1.Dispatcher().Advance(1.0)

		Expect(wlA.InboundFrom("B")).To(HaveLen(1))
		Expect(wlB.OutboundCount()).To(Equal(0))
		Expect(h1.Dispatcher().LocalDeliveries()).To(Equal([]string{"B", "A"}))
		Expect(counter.Total()).To(Equal(0.0))
	})

	It("should run the processing update exactly once on a quiet tick", func() {
		model.EXPECT().
			UpdateProcessing(sim.VTime(3.0), h1).
			Return(sim.VTime(42.0))

		next := h1.Dispatcher().Advance(3.0)

		Expect(next).To(Equal(sim.VTime(42.0)))
		Expect(counter.Total()).To(Equal(0.0))
		Expect(h1.Dispatcher().LocalDeliveries()).To(BeEmpty())
	})

	It("should flush arrived envelopes before the processing update", func() {
		pkt := NewPayload("C", "B", 100)
		envelope := &RoutingEnvelope{OriginHost: "H2", Payload: pkt}

		engine.EXPECT().CurrentTime().Return(sim.VTime(3.0))
		engine.EXPECT().Schedule(gomock.Any())
		h1.DeliverFromNetwork(envelope)

		model.EXPECT().
			UpdateProcessing(sim.VTime(3.0), h1).
			Do(func(now sim.VTime, host *Host) {
				received := wlB.InboundFrom("C")
				Expect(received).To(HaveLen(1))
				Expect(received[0].RecvTime).To(Equal(sim.VTime(3.0)))
			}).
			Return(NoNextEvent)

		h1.Dispatcher().Advance(3.0)
	})

	It("should panic on a destination that is neither resident nor known", func() {
		wlA.EnqueueOutbound(NewPayload("A", "Z", 100))

		model.EXPECT().
			UpdateProcessing(sim.VTime(1.0), h1).
			Return(NoNextEvent)

		Expect(func() { h1.Dispatcher().Advance(1.0) }).To(Panic())
	})
})
