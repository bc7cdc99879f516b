package catalog_test

import (
	"sunflow/bizerror"
	"sunflow/domain"
	"sunflow/domain/catalog"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("TransitionsFor", func() {
	It("should reject unknown entity types", func() {
		definitions, err := catalog.TransitionsFor(domain.EntityType("INVOICE"))
		Expect(definitions).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnknownEntityType))
	})

	It("should declare the fixed sale transition table", func() {
		definitions, err := catalog.TransitionsFor(domain.EntityTypeSale)
		Expect(err).To(BeNil())
		actions := []string{}
		for _, d := range definitions {
			actions = append(actions, d.Action)
		}
		Expect(actions).To(Equal([]string{
			domain.ActionSaleSetProposal, domain.ActionSaleMarkWon, domain.ActionSaleMarkLost}))

		markLost, err := catalog.FindTransition(domain.EntityTypeSale, domain.ActionSaleMarkLost)
		Expect(err).To(BeNil())
		Expect(markLost.RequiresReason).To(BeTrue())
		Expect(markLost.AllowsFrom(string(domain.SaleStatusNew))).To(BeTrue())
		Expect(markLost.AllowsFrom(string(domain.SaleStatusProposal))).To(BeTrue())
		Expect(markLost.AllowsFrom(string(domain.SaleStatusWon))).To(BeFalse())
		Expect(markLost.ToStatus).To(Equal(string(domain.SaleStatusLost)))
	})

	It("should declare the fixed contract transition table", func() {
		definitions, err := catalog.TransitionsFor(domain.EntityTypeContract)
		Expect(err).To(BeNil())
		Expect(len(definitions)).To(Equal(6))

		requestSignature, err := catalog.FindTransition(domain.EntityTypeContract, domain.ActionContractRequestSignature)
		Expect(err).To(BeNil())
		// status preserving action
		Expect(requestSignature.ToStatus).To(BeEmpty())
		Expect(requestSignature.AllowsFrom(string(domain.ContractStatusDraft))).To(BeTrue())
	})

	It("should reject unknown actions", func() {
		definition, err := catalog.FindTransition(domain.EntityTypeSale, "SALE_EXPLODE")
		Expect(definition).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnknownAction))
	})
})

var _ = Describe("contract validators and gates", func() {
	It("should refuse activating an unsigned contract", func() {
		activate, err := catalog.FindTransition(domain.EntityTypeContract, domain.ActionContractActivate)
		Expect(err).To(BeNil())

		snapshot := &domain.EntitySnapshot{Type: domain.EntityTypeContract,
			Status: string(domain.ContractStatusDraft), Contract: &domain.Contract{}}
		Expect(activate.Validate(&domain.TransitionRequest{}, snapshot)).To(Equal(bizerror.ErrContractNotSigned))

		snapshot.Contract.SignedAt = types.CurrentTimestamp()
		Expect(activate.Validate(&domain.TransitionRequest{}, snapshot)).To(BeNil())
	})

	It("should always gate suspension behind approval", func() {
		suspend, err := catalog.FindTransition(domain.EntityTypeContract, domain.ActionContractSuspend)
		Expect(err).To(BeNil())
		snapshot := &domain.EntitySnapshot{Status: string(domain.ContractStatusActive)}
		Expect(suspend.RequiresApproval(&domain.TransitionRequest{}, snapshot)).To(BeTrue())
	})

	It("should gate cancellation behind approval only from ACTIVE or SUSPENDED", func() {
		cancel, err := catalog.FindTransition(domain.EntityTypeContract, domain.ActionContractCancel)
		Expect(err).To(BeNil())

		req := &domain.TransitionRequest{}
		Expect(cancel.RequiresApproval(req, &domain.EntitySnapshot{Status: string(domain.ContractStatusDraft)})).To(BeFalse())
		Expect(cancel.RequiresApproval(req, &domain.EntitySnapshot{Status: string(domain.ContractStatusActive)})).To(BeTrue())
		Expect(cancel.RequiresApproval(req, &domain.EntitySnapshot{Status: string(domain.ContractStatusSuspended)})).To(BeTrue())
	})

	It("should patch signer metadata on activation", func() {
		activate, err := catalog.FindTransition(domain.EntityTypeContract, domain.ActionContractActivate)
		Expect(err).To(BeNil())

		req := &domain.TransitionRequest{Payload: domain.TransitionPayload{
			"signerName": "Maria", "signerEmail": "maria@example.com"}}
		patch := activate.Apply(req, &domain.EntitySnapshot{}, types.CurrentTimestamp())
		Expect(patch).To(Equal(map[string]interface{}{
			"signer_name": "Maria", "signer_email": "maria@example.com"}))

		patch = activate.Apply(&domain.TransitionRequest{}, &domain.EntitySnapshot{}, types.CurrentTimestamp())
		Expect(patch).To(Equal(map[string]interface{}{}))
	})
})

var _ = Describe("checklist validators", func() {
	It("should require the parent contract to be active before starting", func() {
		start, err := catalog.FindTransition(domain.EntityTypeChecklist, domain.ActionChecklistStart)
		Expect(err).To(BeNil())

		snapshot := &domain.EntitySnapshot{ParentContractStatus: domain.ContractStatusDraft}
		Expect(start.Validate(&domain.TransitionRequest{}, snapshot)).To(Equal(bizerror.ErrParentContractNotActive))

		snapshot.ParentContractStatus = domain.ContractStatusActive
		Expect(start.Validate(&domain.TransitionRequest{}, snapshot)).To(BeNil())
	})

	It("should refuse finishing while required items are open", func() {
		finish, err := catalog.FindTransition(domain.EntityTypeChecklist, domain.ActionChecklistFinish)
		Expect(err).To(BeNil())

		snapshot := &domain.EntitySnapshot{Items: []domain.ChecklistItem{
			{Name: "panels mounted", IsRequired: true, Status: domain.ChecklistItemStatusDone},
			{Name: "grid connection", IsRequired: true, Status: domain.ChecklistItemStatusInProgress},
		}}
		Expect(finish.Validate(&domain.TransitionRequest{}, snapshot)).To(Equal(bizerror.ErrChecklistItemsNotDone))

		snapshot.Items[1].Status = domain.ChecklistItemStatusDone
		Expect(finish.Validate(&domain.TransitionRequest{}, snapshot)).To(BeNil())
	})

	It("should allow finishing vacuously when no item exists", func() {
		finish, err := catalog.FindTransition(domain.EntityTypeChecklist, domain.ActionChecklistFinish)
		Expect(err).To(BeNil())
		Expect(finish.Validate(&domain.TransitionRequest{}, &domain.EntitySnapshot{})).To(BeNil())
	})

	It("should only consider required items", func() {
		finish, err := catalog.FindTransition(domain.EntityTypeChecklist, domain.ActionChecklistFinish)
		Expect(err).To(BeNil())
		snapshot := &domain.EntitySnapshot{Items: []domain.ChecklistItem{
			{Name: "customer feedback", IsRequired: false, Status: domain.ChecklistItemStatusPending},
		}}
		Expect(finish.Validate(&domain.TransitionRequest{}, snapshot)).To(BeNil())
	})
})
