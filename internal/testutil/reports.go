package testutil

import "strings"

// CalflopsTinyNet is a calflops capture of a two-layer model whose first layer
// has 4-bit input and weight quantizers. fc1 carries its summary on the line
// after its declaration, the other modules on the declaration itself.
const CalflopsTinyNet = `
------------------------------------- Calculate Flops Results -------------------------------------
Notations:
number of parameters (Params), number of multiply-accumulate operations(MACs),
number of floating-point operations (FLOPs), floating-point operations per second (FLOPS),
fwd FLOPs (model forward propagation FLOPs), bwd FLOPs (model backward propagation FLOPs),
default model backpropagation takes 2.00 times as much computation as forward propagation.

Total Training Params:                                                  1.2 K
fwd MACs:                                                               150 MACs
fwd FLOPs:                                                              300 FLOPS
fwd+bwd MACs:                                                           450 MACs
fwd+bwd FLOPs:                                                          900 FLOPS

-------------------------------- Detailed Calculated FLOPs Results --------------------------------
Each module caculated is listed after its name in the following order: 
params, percentage of total params, MACs, percentage of total MACs, FLOPS, percentage of total FLOPs

Warning: module TensorQuantizer is treated as a zero-op.
TinyNet(
  1.2 K = 100% Params, 150 MACs = 100% MACs, 300 FLOPS = 50% FLOPs
  (fc1): QuantLinear(
    1 K = 83.33% Params, 100 MACs = 66.67% MACs, 200 FLOPS = 33.33% FLOPs, in_features=10, out_features=100
    (_input_quantizer): TensorQuantizer(0 = 0% Params, 0 MACs = 0% MACs, 0 FLOPS = 0% FLOPs, 4bit fake per-tensor amax=1.0000 calibrator=MaxCalibrator)
    (_weight_quantizer): TensorQuantizer(0 = 0% Params, 0 MACs = 0% MACs, 0 FLOPS = 0% FLOPs, 4bit fake axis=0 amax=[0.1, 0.2](100))
  )
  (fc2): Linear(200 = 16.67% Params, 50 MACs = 33.33% MACs, 100 FLOPS = 16.67% FLOPs, in_features=100, out_features=2, bias=True)
)
---------------------------------------------------------------------------------------------------
`

// CalflopsTinyNetCost is the ACE total of CalflopsTinyNet at 32 default bits:
// 150*32*32 minus fc1's saving 100*32*32 - 100*4*4.
const CalflopsTinyNetCost = 52800

// PtflopsTinyNet is a ptflops capture of the same model with only an 8-bit
// input quantizer on fc1.
const PtflopsTinyNet = `
Warning: module QuantLinear is treated as a zero-op.
Warning: module TensorQuantizer is treated as a zero-op.
TinyNet(
  1.2 k, 100.000% Params, 150.0 Mac, 100.000% MACs, 
  (fc1): QuantLinear(
    1.0 k, 83.333% Params, 100.0 Mac, 66.667% MACs, in_features=10, out_features=100
    (_input_quantizer): TensorQuantizer(0, 0.000% Params, 0.0 Mac, 0.000% MACs, 8bit fake per-tensor amax=1.0000)
  )
  (fc2): Linear(200, 16.667% Params, 50.0 Mac, 33.333% MACs, in_features=100, out_features=2, bias=True)
)
Computational complexity:       150.0 Mac
Number of parameters:           1.2 k
`

// PtflopsTinyNetCost is the ACE total of PtflopsTinyNet at 32 default bits:
// 150*32*32 minus fc1's saving 100*32*32 - 100*8*32.
const PtflopsTinyNetCost = 76800

// NestedQuantizers is a calflops listing in which the weight quantizer was
// printed under the input quantizer instead of beside it.
const NestedQuantizers = `
Net(
  1 K = 100% Params, 100 MACs = 100% MACs, 200 FLOPS = 100% FLOPs
  (proj): QuantLinear(1 K = 100% Params, 100 MACs = 100% MACs, 200 FLOPS = 100% FLOPs, in_features=10, out_features=100)
    (_input_quantizer): TensorQuantizer(0 = 0% Params, 0 MACs = 0% MACs, 0 FLOPS = 0% FLOPs, 8bit fake per-tensor)
      (_weight_quantizer): TensorQuantizer(0 = 0% Params, 0 MACs = 0% MACs, 0 FLOPS = 0% FLOPs, 2bit fake axis=0)
)
`

// Lines splits a fixture into report lines, dropping the leading and trailing
// newline of the literal.
func Lines(s string) []string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
