package importer

// Canonical field names of the project-plan document.
const (
	FieldOrdinal          = "ordinal"
	FieldProjectName      = "project_name"
	FieldProductName      = "product_name"
	FieldProductImage     = "product_image"
	FieldCustomerInfo     = "customer_info"
	FieldMilestone        = "milestone"
	FieldDepartment       = "responsible_department"
	FieldPlannedStart     = "planned_start_time"
	FieldPlannedEnd       = "planned_end_time"
	FieldActualCompletion = "actual_completion_time"
	FieldPerson           = "responsible_person"
	FieldExceptionType    = "exception_type"
	FieldImpactCycle      = "impact_cycle"
	FieldResponseMeasures = "response_measures"
)

// PlanVocabulary lists every canonical field of the project-plan document,
// in sheet column order.
func PlanVocabulary() []string {
	return []string{
		FieldOrdinal,
		FieldProjectName,
		FieldProductName,
		FieldProductImage,
		FieldCustomerInfo,
		FieldMilestone,
		FieldDepartment,
		FieldPlannedStart,
		FieldPlannedEnd,
		FieldActualCompletion,
		FieldPerson,
		FieldExceptionType,
		FieldImpactCycle,
		FieldResponseMeasures,
	}
}

// PlanAliases is the default alias table for project-plan workbooks. The
// exports this pipeline consumes carry Chinese labels; positional
// placeholders cover sheets whose header cells are merged away.
func PlanAliases() AliasTable {
	return AliasTable{
		FieldOrdinal:          {"序号", "no.", "column_0"},
		FieldProjectName:      {"项目名称", "project name", "column_1"},
		FieldProductName:      {"产品名称", "product name", "column_2"},
		FieldProductImage:     {"产品示意图", "product image", "column_3"},
		FieldCustomerInfo:     {"客户名称及订单情况", "customer and order", "column_4"},
		FieldMilestone:        {"关键里程碑节点", "关键节点", "key milestone", "column_5"},
		FieldDepartment:       {"责任部门", "负责部门", "department", "column_6"},
		FieldPlannedStart:     {"计划开始时间", "planned start", "column_7"},
		FieldPlannedEnd:       {"计划结束时间", "planned end", "column_8"},
		FieldActualCompletion: {"实际完成时间", "actual completion", "column_9"},
		FieldPerson:           {"负责人", "responsible person", "column_10"},
		FieldExceptionType:    {"异常类别", "exception type", "column_11"},
		FieldImpactCycle:      {"影响周期（天）", "影响周期", "impact days", "column_12"},
		FieldResponseMeasures: {"应对措施", "response measures", "column_13"},
	}
}

// headerEchoKeywords flag rows that repeat the sheet's own header mid-body.
var headerEchoKeywords = []string{
	"项目名称",
	"产品名称",
	"关键里程碑节点",
	"计划开始时间",
	"计划结束时间",
	"project name",
	"product name",
	"key milestone",
}

// administrativeMarkers appear in the ordinal column of signature rows
// (prepared-by, co-signed-by) at the bottom of the sheet.
var administrativeMarkers = []string{
	"编制",
	"会签",
	"prepared by",
	"co-signed",
}

// parentFields are forward-filled down through milestone rows that share a
// parent context. The milestone label itself is never forward-filled.
var parentFields = []string{
	FieldProjectName,
	FieldProductName,
	FieldProductImage,
	FieldCustomerInfo,
}
