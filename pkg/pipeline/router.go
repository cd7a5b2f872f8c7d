package pipeline

// node names one stage of the pipeline state machine.
type node string

const (
	nodeClassifyIntent   node = "classify_intent"
	nodeCreateQuery      node = "create_query"
	nodePlanSQL          node = "plan_sql"
	nodeGenerateSQL      node = "generate_sql"
	nodeExecuteSQL       node = "execute_sql"
	nodeSQLCorrection    node = "sql_correction"
	nodeHandleOutOfScope node = "handle_out_of_scope"
	nodeFormatResponse   node = "format_response"
	nodeEnd              node = "end"
)

// routeFunc picks the next node from the merged state. Routing reads state
// only; it never mutates.
type routeFunc func(st *RunState) node

func staticEdge(next node) routeFunc {
	return func(*RunState) node { return next }
}

// routeAfterIntent sends recognized text2sql questions down the SQL branch.
// Anything else, including unrecognized labels, is treated as out of scope.
func routeAfterIntent(st *RunState) node {
	if st.Intent == IntentText2SQL {
		return nodeCreateQuery
	}
	return nodeHandleOutOfScope
}

// routeAfterExecute allows a single correction attempt for retriable
// failures; every other outcome goes straight to formatting.
func routeAfterExecute(st *RunState) node {
	if st.SQLError == "" {
		return nodeFormatResponse
	}
	if !st.HasRetried && st.SQLErrorCategory.Retriable() {
		return nodeSQLCorrection
	}
	return nodeFormatResponse
}

// transitions is the full edge table of the state machine. Keeping it as
// data makes the control flow auditable in one place.
var transitions = map[node]routeFunc{
	nodeClassifyIntent:   routeAfterIntent,
	nodeCreateQuery:      staticEdge(nodePlanSQL),
	nodePlanSQL:          staticEdge(nodeGenerateSQL),
	nodeGenerateSQL:      staticEdge(nodeExecuteSQL),
	nodeExecuteSQL:       routeAfterExecute,
	nodeSQLCorrection:    staticEdge(nodeExecuteSQL),
	nodeHandleOutOfScope: staticEdge(nodeFormatResponse),
	nodeFormatResponse:   staticEdge(nodeEnd),
}
