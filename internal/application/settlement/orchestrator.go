package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerrank/backend/internal/domain/ledger"
	"github.com/peerrank/backend/internal/domain/ranking"
	"github.com/peerrank/backend/internal/domain/settlement"
	"github.com/peerrank/backend/internal/domain/shared"
	"github.com/peerrank/backend/internal/domain/stage"
)

// DefaultExecutionBudget bounds how long one settlement attempt may
// hold the stage lock before the janitor treats it as abandoned.
const DefaultExecutionBudget = 2 * time.Minute

// Orchestrator drives the settlement state machine: lock acquisition,
// consensus resolution, reward computation, atomic ledger posting,
// progress broadcast, and reversal. It is the only writer of stage
// settlement timestamps.
type Orchestrator struct {
	scope          TransactionScope
	stageRepo      stage.Repository
	proposalRepo   ranking.ProposalRepository
	ballotRepo     ranking.BallotRepository
	ledgerRepo     ledger.Repository
	settlementRepo settlement.Repository
	directory      StageDirectory
	events         shared.EventPublisher
	cfg            settlement.ScoringConfig
	budget         time.Duration
	logger         *zap.Logger
}

// OrchestratorOption configures the orchestrator
type OrchestratorOption func(*Orchestrator)

// WithExecutionBudget bounds the lock hold time of one attempt
func WithExecutionBudget(budget time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if budget > 0 {
			o.budget = budget
		}
	}
}

// WithLogger sets the orchestrator logger
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates a settlement orchestrator
func NewOrchestrator(
	scope TransactionScope,
	stageRepo stage.Repository,
	proposalRepo ranking.ProposalRepository,
	ballotRepo ranking.BallotRepository,
	ledgerRepo ledger.Repository,
	settlementRepo settlement.Repository,
	directory StageDirectory,
	events shared.EventPublisher,
	cfg settlement.ScoringConfig,
	opts ...OrchestratorOption,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		scope:          scope,
		stageRepo:      stageRepo,
		proposalRepo:   proposalRepo,
		ballotRepo:     ballotRepo,
		ledgerRepo:     ledgerRepo,
		settlementRepo: settlementRepo,
		directory:      directory,
		events:         events,
		cfg:            cfg,
		budget:         DefaultExecutionBudget,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// categorySnapshot is the consensus input of one category, read once
// per settlement attempt behind the stage lock.
type categorySnapshot struct {
	items        []settlement.Item
	input        settlement.ConsensusInput
	totalBallots int
}

// Validate dry-runs the settlement preconditions without mutating
// anything. Errors block settlement, warnings do not.
func (o *Orchestrator) Validate(ctx context.Context, stageID uuid.UUID) (*ValidationReport, error) {
	st, err := o.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{StageID: stageID, CanSettle: true}

	if err := st.CanSettle(); err != nil {
		report.addCheck("stage_status", SeverityError, false, err.Error())
	} else {
		report.addCheck("stage_status", SeverityError, true, "Stage is in voting status")
	}

	reportSnap, err := o.snapshot(ctx, stageID, ranking.CategoryReport)
	if err != nil {
		return nil, err
	}
	consensus := settlement.ResolveConsensus(reportSnap.input)
	report.ExcludedGroups = consensus.ExcludedGroups

	if consensus.HasExclusions() {
		report.addCheck("all_groups_have_consensus", SeverityError, false,
			fmt.Sprintf("%d group(s) have no accepted ranking and no supervisor override", len(consensus.ExcludedGroups)))
	} else {
		report.addCheck("all_groups_have_consensus", SeverityError, true, "Every group has an authoritative ranking")
	}

	if len(reportSnap.input.SupervisorRanking) == 0 {
		report.addCheck("supervisor_ranking_present", SeverityWarning, false,
			"No supervisor ranking submitted; groups without peer consensus cannot fall back")
	} else {
		report.addCheck("supervisor_ranking_present", SeverityWarning, true, "Supervisor ranking submitted")
	}

	if st.CommentRewardPool > 0 {
		commentSnap, err := o.snapshot(ctx, stageID, ranking.CategoryComment)
		if err != nil {
			return nil, err
		}
		commentConsensus := settlement.ResolveConsensus(commentSnap.input)
		if len(commentSnap.items) == 0 {
			report.addCheck("comment_rankings_present", SeverityWarning, false,
				"Comment reward pool is set but the stage has no rankable comments")
		} else if commentConsensus.HasExclusions() {
			report.addCheck("comment_rankings_present", SeverityWarning, false,
				fmt.Sprintf("%d group(s) are excluded from the comment ranking", len(commentConsensus.ExcludedGroups)))
		} else {
			report.addCheck("comment_rankings_present", SeverityWarning, true, "Comment rankings resolved")
		}
	}

	return report, nil
}

// Settle runs the settlement state machine for a stage. The per-stage
// lock makes the run single-flight: a concurrent attempt fails fast
// with SETTLEMENT_IN_PROGRESS instead of queuing. All ledger postings
// of the run commit atomically with the settlement record.
func (o *Orchestrator) Settle(ctx context.Context, stageID uuid.UUID, operatorID string, force bool) (*Result, error) {
	if operatorID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operator identity is required")
	}

	ctx, cancel := context.WithTimeout(ctx, o.budget)
	defer cancel()

	st, err := o.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if err := st.CanSettle(); err != nil {
		return nil, err
	}

	o.publish(ctx, NewProgressEvent(stageID, StepInitializing, "Settlement started", nil))

	claimed, err := o.stageRepo.ClaimSettling(ctx, stageID, time.Now())
	if err != nil {
		return nil, o.fail(ctx, stageID, false, err)
	}
	if !claimed {
		// Lost the race: report the precise reason
		current, ferr := o.findStage(ctx, stageID)
		if ferr == nil && current.SettledTime != nil {
			return nil, o.fail(ctx, stageID, false, shared.ErrAlreadySettled)
		}
		return nil, o.fail(ctx, stageID, false, shared.ErrSettlementInProgress)
	}

	result, err := o.settleLocked(ctx, st, operatorID, force)
	if err != nil {
		return nil, o.fail(ctx, stageID, true, err)
	}
	return result, nil
}

// settleLocked runs steps 2-6 of the state machine with the stage lock
// held. Any error propagates to the caller, which releases the lock.
func (o *Orchestrator) settleLocked(ctx context.Context, st *stage.Stage, operatorID string, force bool) (*Result, error) {
	stageID := st.ID

	// Re-read behind the claim: the pre-claim check may have raced a
	// concurrent settlement that completed in between.
	st, err := o.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if st.SettledTime != nil {
		return nil, shared.ErrAlreadySettled
	}

	o.publish(ctx, NewProgressEvent(stageID, StepLockAcquired, "Stage locked for settlement", nil))

	// Re-read proposals and ballots under the lock; the pre-lock
	// validation may be stale.
	reportSnap, err := o.snapshot(ctx, stageID, ranking.CategoryReport)
	if err != nil {
		return nil, err
	}
	reportConsensus := settlement.ResolveConsensus(reportSnap.input)
	if reportConsensus.HasExclusions() && !force {
		return nil, shared.ErrIncompleteConsensus
	}
	if reportConsensus.HasExclusions() {
		o.logger.Warn("force settling with excluded groups",
			zap.String("stage_id", stageID.String()),
			zap.String("operator", operatorID),
			zap.Int("excluded_groups", len(reportConsensus.ExcludedGroups)),
		)
	}

	commentSnap, err := o.snapshot(ctx, stageID, ranking.CategoryComment)
	if err != nil {
		return nil, err
	}
	commentConsensus := settlement.ResolveConsensus(commentSnap.input)

	o.publish(ctx, NewProgressEvent(stageID, StepVotesCalculated, "Consensus resolved", map[string]interface{}{
		"acceptedGroups": len(reportConsensus.AcceptedGroups),
		"excludedGroups": len(reportConsensus.ExcludedGroups),
		"totalBallots":   reportSnap.totalBallots + commentSnap.totalBallots,
		"rankedItems":    len(reportConsensus.Entries),
	}))

	reportEntries, err := o.rewardEntries(ctx, stageID, reportConsensus, true)
	if err != nil {
		return nil, err
	}
	reportDist, err := settlement.CalculateRewards(st.ReportRewardPool, o.cfg, reportEntries)
	if err != nil {
		return nil, err
	}
	o.publish(ctx, NewProgressEvent(stageID, StepDistributingReportRewards, "Report rewards computed", map[string]interface{}{
		"postings": len(reportDist.Postings),
		"total":    reportDist.Total,
	}))

	commentEntries, err := o.rewardEntries(ctx, stageID, commentConsensus, false)
	if err != nil {
		return nil, err
	}
	commentDist, err := settlement.CalculateCommentRewards(st.CommentRewardPool, o.cfg, commentEntries)
	if err != nil {
		return nil, err
	}
	o.publish(ctx, NewProgressEvent(stageID, StepDistributingCommentRewards, "Comment rewards computed", map[string]interface{}{
		"postings": len(commentDist.Postings),
		"total":    commentDist.Total,
	}))

	record := settlement.NewRecord(stageID, st.ProjectID, operatorID, reportDist, commentDist, reportConsensus.ExcludedGroups, force)

	transactions, err := o.buildTransactions(st, record.ID, reportDist, commentDist)
	if err != nil {
		return nil, err
	}

	settledAt := time.Now()
	err = o.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LedgerRepo().SaveBatch(ctx, transactions); err != nil {
			return err
		}
		if err := repos.SettlementRepo().Save(ctx, record); err != nil {
			return err
		}
		if err := repos.ProposalRepo().MarkSettled(ctx, stageID, operatorID); err != nil {
			return err
		}
		return repos.StageRepo().MarkSettled(ctx, stageID, operatorID, settledAt)
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("stage settled",
		zap.String("stage_id", stageID.String()),
		zap.String("settlement_id", record.ID.String()),
		zap.String("operator", operatorID),
		zap.Int64("total_distributed", record.TotalRewardsAwarded),
		zap.Int("participants", record.ParticipantCount),
		zap.Bool("forced", force),
	)
	o.publish(ctx, NewProgressEvent(stageID, StepCompleted, "Settlement completed", map[string]interface{}{
		"settlementId":     record.ID.String(),
		"totalDistributed": record.TotalRewardsAwarded,
		"participants":     record.ParticipantCount,
	}))

	result := NewResult(record, st.Name, false)
	return &result, nil
}

// ReverseSettlement undoes the most recent completed settlement of a
// stage by posting compensating ledger entries. The original record and
// entries stay untouched; a failure posts nothing. The stage remains
// completed: returning it to voting is a separate ReopenStage call.
func (o *Orchestrator) ReverseSettlement(ctx context.Context, stageID, settlementID uuid.UUID, operatorID, reason string) (*Result, error) {
	if operatorID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operator identity is required")
	}
	if len(reason) < 5 || len(reason) > 500 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reversal reason must be between 5 and 500 characters")
	}

	ctx, cancel := context.WithTimeout(ctx, o.budget)
	defer cancel()

	st, err := o.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	// Reversal takes the same per-stage lock as settlement, so the two
	// can never interleave for one stage.
	claimed, err := o.stageRepo.ClaimSettling(ctx, stageID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, shared.ErrSettlementInProgress
	}
	defer func() {
		if rerr := o.stageRepo.ReleaseSettling(ctx, stageID); rerr != nil {
			o.logger.Error("failed to release settlement claim",
				zap.String("stage_id", stageID.String()),
				zap.Error(rerr),
			)
		}
	}()

	record, originals, err := o.reversalTarget(ctx, stageID, settlementID)
	if err != nil {
		return nil, err
	}

	reversals := make([]*ledger.Transaction, 0, len(originals))
	var total int64
	for i := range originals {
		rev, err := ledger.NewReversalTransaction(&originals[i], reason)
		if err != nil {
			return nil, err
		}
		reversals = append(reversals, rev)
		total += rev.Amount
	}

	reversalRecord := settlement.NewReversalRecord(record, operatorID, reason, total)

	err = o.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LedgerRepo().SaveBatch(ctx, reversals); err != nil {
			return err
		}
		return repos.SettlementRepo().Save(ctx, reversalRecord)
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("settlement reversed",
		zap.String("stage_id", stageID.String()),
		zap.String("settlement_id", settlementID.String()),
		zap.String("reversal_id", reversalRecord.ID.String()),
		zap.String("operator", operatorID),
		zap.Int64("total_reversed", total),
	)
	o.publish(ctx, NewReversedEvent(stageID, settlementID, reversalRecord.ID))

	result := NewResult(reversalRecord, st.Name, false)
	return &result, nil
}

// ReopenStage returns a completed stage to the voting phase. Reversal
// alone leaves the stage completed, so a reversed stage never silently
// starts accepting ballots again; reopening is its own operator action
// and requires the latest settlement to be reversed first.
func (o *Orchestrator) ReopenStage(ctx context.Context, stageID uuid.UUID, operatorID string) (*stage.Stage, error) {
	if operatorID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operator identity is required")
	}

	st, err := o.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if st.SettledTime == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Only a completed stage can be reopened")
	}

	latest, err := o.settlementRepo.FindLatestSettlement(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		reversal, err := o.settlementRepo.FindReversalOf(ctx, latest.ID)
		if err != nil {
			return nil, err
		}
		if reversal == nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "The latest settlement must be reversed before the stage can reopen")
		}
	}

	// Same per-stage lock as settlement and reversal
	claimed, err := o.stageRepo.ClaimSettling(ctx, stageID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, shared.ErrSettlementInProgress
	}

	err = o.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ProposalRepo().ClearSettled(ctx, stageID); err != nil {
			return err
		}
		// Also drops the claim taken above
		return repos.StageRepo().ClearSettlement(ctx, stageID)
	})
	if err != nil {
		if rerr := o.stageRepo.ReleaseSettling(ctx, stageID); rerr != nil {
			o.logger.Error("failed to release settlement claim",
				zap.String("stage_id", stageID.String()),
				zap.Error(rerr),
			)
		}
		return nil, err
	}

	o.logger.Info("stage reopened for voting",
		zap.String("stage_id", stageID.String()),
		zap.String("operator", operatorID),
	)
	return o.findStage(ctx, stageID)
}

// PreviewReversal computes the would-be reversal postings without
// writing anything.
func (o *Orchestrator) PreviewReversal(ctx context.Context, stageID, settlementID uuid.UUID) (*ReversalPreview, error) {
	if _, err := o.findStage(ctx, stageID); err != nil {
		return nil, err
	}
	_, originals, err := o.reversalTarget(ctx, stageID, settlementID)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	impacts := make(map[string]int64)
	var total int64
	for i := range originals {
		if _, seen := impacts[originals[i].UserID]; !seen {
			order = append(order, originals[i].UserID)
		}
		impacts[originals[i].UserID] -= originals[i].Amount
		total -= originals[i].Amount
	}

	preview := &ReversalPreview{
		StageID:      stageID,
		SettlementID: settlementID,
		TotalChange:  total,
		Transactions: len(originals),
	}
	for _, userID := range order {
		preview.Impacts = append(preview.Impacts, UserImpact{UserID: userID, Amount: impacts[userID]})
	}
	return preview, nil
}

// Result returns the settlement result of a stage's latest run
func (o *Orchestrator) Result(ctx context.Context, stageID uuid.UUID) (*Result, error) {
	st, err := o.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	record, err := o.settlementRepo.FindLatestSettlement(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, shared.ErrNotFound
	}
	reversal, err := o.settlementRepo.FindReversalOf(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	result := NewResult(record, st.Name, reversal != nil)
	return &result, nil
}

// History returns all settlement and reversal records of a stage
func (o *Orchestrator) History(ctx context.Context, stageID uuid.UUID) ([]Result, error) {
	st, err := o.findStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	records, err := o.settlementRepo.FindByStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(records))
	for i := range records {
		reversal, err := o.settlementRepo.FindReversalOf(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, NewResult(&records[i], st.Name, reversal != nil))
	}
	return out, nil
}

// Details returns one settlement record with its ledger entries
func (o *Orchestrator) Details(ctx context.Context, settlementID uuid.UUID) (*Details, error) {
	record, err := o.settlementRepo.FindByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, shared.ErrNotFound
	}
	st, err := o.findStage(ctx, record.StageID)
	if err != nil {
		return nil, err
	}
	reversal, err := o.settlementRepo.FindReversalOf(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	entries, err := o.ledgerRepo.FindBySettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	return &Details{Result: NewResult(record, st.Name, reversal != nil), Entries: entries}, nil
}

// reversalTarget validates that the settlement is reversible and
// returns it with the original (non-reversal) entries to compensate.
func (o *Orchestrator) reversalTarget(ctx context.Context, stageID, settlementID uuid.UUID) (*settlement.Record, []ledger.Transaction, error) {
	record, err := o.settlementRepo.FindByID(ctx, settlementID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil || record.StageID != stageID {
		return nil, nil, shared.ErrNotFound
	}
	if record.IsReversal() {
		return nil, nil, shared.NewDomainError("VALIDATION_ERROR", "A reversal record cannot be reversed")
	}
	latest, err := o.settlementRepo.FindLatestSettlement(ctx, stageID)
	if err != nil {
		return nil, nil, err
	}
	if latest == nil || latest.ID != record.ID {
		return nil, nil, shared.NewDomainError("VALIDATION_ERROR", "Only the most recent settlement of a stage can be reversed")
	}
	existing, err := o.settlementRepo.FindReversalOf(ctx, settlementID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, shared.ErrAlreadyReversed
	}

	entries, err := o.ledgerRepo.FindBySettlement(ctx, settlementID)
	if err != nil {
		return nil, nil, err
	}
	originals := make([]ledger.Transaction, 0, len(entries))
	for _, e := range entries {
		if e.Type != ledger.TypeReversal {
			originals = append(originals, e)
		}
	}
	return record, originals, nil
}

// snapshot reads one category's consensus input: the stage items, each
// group's live proposal with its tally, and the supervisor ranking.
func (o *Orchestrator) snapshot(ctx context.Context, stageID uuid.UUID, category ranking.Category) (*categorySnapshot, error) {
	items, err := o.directory.Items(ctx, stageID, category)
	if err != nil {
		return nil, err
	}

	groups := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		groups[it.GroupID] = struct{}{}
	}

	candidates := make(map[uuid.UUID]settlement.Candidate, len(groups))
	totalBallots := 0
	for groupID := range groups {
		p, err := o.proposalRepo.FindLiveByGroup(ctx, stageID, groupID, category)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		ballots, err := o.ballotRepo.FindByProposal(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		totalBallots += len(ballots)
		candidates[groupID] = settlement.Candidate{Proposal: p, Tally: ranking.TallyBallots(p, ballots)}
	}

	supervisor, rankedAt, err := o.directory.SupervisorRanking(ctx, stageID, category)
	if err != nil {
		return nil, err
	}

	return &categorySnapshot{
		items: items,
		input: settlement.ConsensusInput{
			Items:              items,
			Candidates:         candidates,
			SupervisorRanking:  supervisor,
			SupervisorRankedAt: rankedAt,
		},
		totalBallots: totalBallots,
	}, nil
}

// rewardEntries enriches consensus entries with member shares. Report
// rewards split by declared participation; comment rewards go straight
// to the comment author.
func (o *Orchestrator) rewardEntries(ctx context.Context, stageID uuid.UUID, consensus settlement.ConsensusResult, withMembers bool) ([]settlement.RewardEntry, error) {
	entries := make([]settlement.RewardEntry, 0, len(consensus.Entries))
	shares := make(map[uuid.UUID][]settlement.MemberShare)
	for _, e := range consensus.Entries {
		entry := settlement.RewardEntry{
			ItemID:         e.ItemID,
			GroupID:        e.GroupID,
			AuthorID:       e.AuthorID,
			Rank:           e.Rank,
			PeerRank:       e.PeerRank,
			SupervisorRank: e.SupervisorRank,
			FromSupervisor: e.FromSupervisor,
		}
		if withMembers {
			members, ok := shares[e.GroupID]
			if !ok {
				var err error
				members, err = o.directory.MemberShares(ctx, stageID, e.GroupID)
				if err != nil {
					return nil, err
				}
				shares[e.GroupID] = members
			}
			entry.Members = members
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// buildTransactions maps both distributions to ledger entries linked to
// the settlement record.
func (o *Orchestrator) buildTransactions(st *stage.Stage, settlementID uuid.UUID, report, comment settlement.Distribution) ([]*ledger.Transaction, error) {
	out := make([]*ledger.Transaction, 0, len(report.Postings)+len(comment.Postings))
	for _, p := range report.Postings {
		tx, err := ledger.NewAwardTransaction(st.ProjectID, p.UserID, st.ID, p.Amount)
		if err != nil {
			return nil, err
		}
		tx.WithSettlement(settlementID).
			WithSubmission(p.SourceItemID).
			WithReason("Report ranking reward").
			WithMetadata(map[string]interface{}{
				"rank":       p.Rank,
				"percentage": p.Percent.String(),
				"groupId":    p.GroupID.String(),
			})
		out = append(out, tx)
	}
	for _, p := range comment.Postings {
		tx, err := ledger.NewAwardTransaction(st.ProjectID, p.UserID, st.ID, p.Amount)
		if err != nil {
			return nil, err
		}
		tx.WithSettlement(settlementID).
			WithComment(p.SourceItemID).
			WithReason("Comment ranking reward").
			WithMetadata(map[string]interface{}{
				"rank":    p.Rank,
				"groupId": p.GroupID.String(),
			})
		out = append(out, tx)
	}
	return out, nil
}

// fail releases the lock when held, emits the failure message in place
// of the next step, and logs the attempt with full context.
func (o *Orchestrator) fail(ctx context.Context, stageID uuid.UUID, locked bool, cause error) error {
	if locked {
		if err := o.stageRepo.ReleaseSettling(ctx, stageID); err != nil {
			o.logger.Error("failed to release settlement claim",
				zap.String("stage_id", stageID.String()),
				zap.Error(err),
			)
		}
	}
	o.logger.Warn("settlement attempt failed",
		zap.String("stage_id", stageID.String()),
		zap.Error(cause),
	)
	o.publish(ctx, NewFailureEvent(stageID, cause.Error(), nil))
	return cause
}

func (o *Orchestrator) findStage(ctx context.Context, stageID uuid.UUID) (*stage.Stage, error) {
	st, err := o.stageRepo.FindByID(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, shared.ErrNotFound
	}
	return st, nil
}

func (o *Orchestrator) publish(ctx context.Context, event shared.DomainEvent) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, event); err != nil {
		o.logger.Warn("progress event publish failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
