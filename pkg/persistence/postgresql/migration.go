package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workflow definitions
			CREATE TABLE workflows (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				state VARCHAR(32) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				CONSTRAINT workflows_name_key UNIQUE (name)
			);

			CREATE TABLE workflow_args (
				id BIGSERIAL PRIMARY KEY,
				workflow_id BIGINT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				arg_key VARCHAR(255) NOT NULL,
				default_value TEXT,
				CONSTRAINT workflow_args_key UNIQUE (workflow_id, arg_key)
			);

			CREATE TABLE workflow_steps (
				id BIGSERIAL PRIMARY KEY,
				workflow_id BIGINT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				step_name VARCHAR(255) NOT NULL,
				service VARCHAR(255) NOT NULL,
				task VARCHAR(255) NOT NULL,
				step_order INTEGER NOT NULL CHECK (step_order >= 0),
				CONSTRAINT workflow_steps_order_key UNIQUE (workflow_id, step_order)
			);

			CREATE TABLE workflow_step_inputs (
				id BIGSERIAL PRIMARY KEY,
				step_id BIGINT NOT NULL REFERENCES workflow_steps(id) ON DELETE CASCADE,
				input_key VARCHAR(255) NOT NULL,
				input_value TEXT NOT NULL,
				CONSTRAINT workflow_step_inputs_key UNIQUE (step_id, input_key)
			);

			CREATE INDEX idx_workflow_args_workflow_id ON workflow_args(workflow_id);
			CREATE INDEX idx_workflow_steps_workflow_id ON workflow_steps(workflow_id);
			CREATE INDEX idx_workflow_step_inputs_step_id ON workflow_step_inputs(step_id);
		`,
	}
}
