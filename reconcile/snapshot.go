package reconcile

import (
	"strconv"

	"planimport/audit"
	"planimport/workbook"
)

func projectSnapshot(p workbook.Project) audit.Snapshot {
	return audit.Snapshot{
		"project_name":  p.Name,
		"product_name":  p.ProductName,
		"product_image": p.ProductImage,
		"customer_name": p.CustomerName,
		"order_status":  p.OrderStatus,
		"source_date":   p.SourceDate,
	}
}

func milestoneSnapshot(m workbook.Milestone) audit.Snapshot {
	return audit.Snapshot{
		"project_id":             strconv.FormatInt(m.ProjectID, 10),
		"sequence":               strconv.Itoa(m.Sequence),
		"milestone":              m.Label,
		"responsible_department": m.Department,
		"planned_start_time":     m.PlannedStart,
		"planned_end_time":       m.PlannedEnd,
		"actual_completion_time": m.ActualCompletion,
		"responsible_person":     m.Person,
		"exception_type":         m.ExceptionType,
		"impact_cycle":           m.ImpactCycle,
		"response_measures":      m.ResponseMeasures,
		"source_date":            m.SourceDate,
	}
}

func processEntrySnapshot(e workbook.ProcessEntry) audit.Snapshot {
	return audit.Snapshot{
		"source_date":    e.SourceDate,
		"node_id":        e.NodeID,
		"process_id":     e.ProcessID,
		"title":          e.Title,
		"process_name":   e.ProcessName,
		"process_type":   e.ProcessType,
		"branch":         e.Branch,
		"department":     e.Department,
		"operator":       e.Operator,
		"operation_type": e.OperationType,
		"node_name":      e.NodeName,
		"first_received": e.FirstReceived,
		"last_processed": e.LastProcessed,
		"total_duration": e.TotalDuration,
		"total_timeout":  e.TotalTimeout,
	}
}

func deptLoadSnapshot(l workbook.DeptLoad) audit.Snapshot {
	return audit.Snapshot{
		"source_date":     l.SourceDate,
		"department":      l.Department,
		"personnel_count": l.PersonnelCount,
		"timeout_count":   l.TimeoutCount,
	}
}

func operatorDetailSnapshot(d workbook.OperatorDetail) audit.Snapshot {
	return audit.Snapshot{
		"source_date":    d.SourceDate,
		"operator":       d.Operator,
		"department":     d.Department,
		"operation_type": d.OperationType,
		"quantity":       d.Quantity,
	}
}
