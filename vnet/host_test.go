package vnet

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/cloudgridlab/cloudgrid/sim"
)

var _ = Describe("Host", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		model    *MockProcessingModel

		wlA *Workload
		h   *Host
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
		model = NewMockProcessingModel(mockCtrl)

		var err error
		wlA, err = NewWorkload("A", 1000, 10)
		Expect(err).To(BeNil())

		h = MakeHostBuilder().
			WithEngine(engine).
			WithProcessingModel(model).
			WithResidents(wlA).
			Build("H1")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not carry a dispatcher when built without a switch", func() {
		Expect(h.Dispatcher()).To(BeNil())
	})

	It("should look up residents by ID", func() {
		Expect(h.Resident("A")).To(BeIdenticalTo(wlA))
		Expect(h.Resident("Z")).To(BeNil())
	})

	It("should run the processing model directly without networking", func() {
		model.EXPECT().
			UpdateProcessing(sim.VTime(5.0), h).
			Return(NoNextEvent)

		next := h.Advance(5.0)

		Expect(next).To(Equal(NoNextEvent))
	})

	It("should schedule a follow-up update at the model's next event time", func() {
		model.EXPECT().
			UpdateProcessing(sim.VTime(5.0), h).
			Return(sim.VTime(7.0))
		engine.EXPECT().Schedule(gomock.Any()).Do(func(e sim.Event) {
			update := e.(*HostUpdateEvent)
			Expect(update.Time()).To(Equal(sim.VTime(7.0)))
			Expect(update.Handler()).To(BeIdenticalTo(h))
		})

		h.Advance(5.0)
	})

	It("should not schedule a follow-up for the current time", func() {
		model.EXPECT().
			UpdateProcessing(sim.VTime(5.0), h).
			Return(sim.VTime(5.0))

		h.Advance(5.0)
	})

	It("should advance when handling an update event", func() {
		model.EXPECT().
			UpdateProcessing(sim.VTime(2.0), h).
			Return(NoNextEvent)

		err := h.Handle(MakeHostUpdateEvent(2.0, h))

		Expect(err).To(BeNil())
	})

	It("should coalesce pending update schedules", func() {
		engine.EXPECT().Schedule(gomock.Any()).Times(1)

		h.KickStart(0)
		h.KickStart(0)
	})

	It("should schedule again once the pending update has run", func() {
		engine.EXPECT().Schedule(gomock.Any()).Times(2)
		model.EXPECT().
			UpdateProcessing(sim.VTime(0.0), h).
			Return(NoNextEvent)

		h.KickStart(0)
		h.Handle(MakeHostUpdateEvent(0, h))
		h.KickStart(1.0)
	})

	It("should panic on an event type it does not know", func() {
		sw := MakeSwitchBuilder().WithEngine(engine).Build("Switch")
		evt := MakePacketUpEvent(1.0, sw, nil)

		Expect(func() { h.Handle(evt) }).To(Panic())
	})

	It("should refuse duplicate residents", func() {
		Expect(func() {
			MakeHostBuilder().
				WithEngine(engine).
				WithProcessingModel(model).
				WithResidents(wlA, wlA).
				Build("H3")
		}).To(Panic())
	})
})
