package shared

// TransferSequenceKey is the redis counter backing transfer numbers.
const TransferSequenceKey = "interunit:transfer:seq"
